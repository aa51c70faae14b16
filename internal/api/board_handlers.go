// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/board"
)

// pathID parses a ULID path parameter. A malformed id cannot name an
// existing resource, so it is reported as not found.
func pathID(c echo.Context, param, notFoundMsg string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(c.Param(param))
	if err != nil {
		return ulid.ULID{}, oops.Code(board.CodeNotFound).With(param, c.Param(param)).Errorf("%s", notFoundMsg)
	}
	return id, nil
}

func authorID(c echo.Context) (ulid.ULID, error) {
	return pathID(c, "id", board.MsgAuthorNotFound)
}

func articlePath(c echo.Context) (ulid.ULID, ulid.ULID, error) {
	aid, err := authorID(c)
	if err != nil {
		return ulid.ULID{}, ulid.ULID{}, err
	}
	articleID, err := pathID(c, "articleId", board.MsgArticleNotFound)
	if err != nil {
		return ulid.ULID{}, ulid.ULID{}, err
	}
	return aid, articleID, nil
}

func (s *Server) createAuthor(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	req, err := bind[authorRequest](c)
	if err != nil {
		return err
	}

	author, err := s.board.CreateAuthor(c.Request().Context(), actor, *req.NickName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, author)
}

func (s *Server) listAuthors(c echo.Context) error {
	authors, err := s.board.ListAuthors(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authors)
}

func (s *Server) getAuthor(c echo.Context) error {
	id, err := authorID(c)
	if err != nil {
		return err
	}
	author, err := s.board.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, author)
}

func (s *Server) updateAuthor(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := authorID(c)
	if err != nil {
		return err
	}
	req, err := bind[authorRequest](c)
	if err != nil {
		return err
	}

	author, err := s.board.UpdateAuthor(c.Request().Context(), actor, id, *req.NickName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, author)
}

func (s *Server) deleteAuthor(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := authorID(c)
	if err != nil {
		return err
	}
	if err := s.board.DeleteAuthor(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) createArticle(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	aid, err := authorID(c)
	if err != nil {
		return err
	}
	req, err := bind[articleRequest](c)
	if err != nil {
		return err
	}

	article, err := s.board.CreateArticle(c.Request().Context(), actor, aid, *req.Title, *req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, article)
}

func (s *Server) listArticles(c echo.Context) error {
	aid, err := authorID(c)
	if err != nil {
		return err
	}
	articles, err := s.board.ListArticles(c.Request().Context(), aid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

func (s *Server) getArticle(c echo.Context) error {
	aid, articleID, err := articlePath(c)
	if err != nil {
		return err
	}
	article, err := s.board.GetArticle(c.Request().Context(), aid, articleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, article)
}

func (s *Server) updateArticle(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	aid, articleID, err := articlePath(c)
	if err != nil {
		return err
	}
	req, err := bind[articleRequest](c)
	if err != nil {
		return err
	}

	article, err := s.board.UpdateArticle(c.Request().Context(), actor, aid, articleID, *req.Title, *req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, article)
}

func (s *Server) deleteArticle(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	aid, articleID, err := articlePath(c)
	if err != nil {
		return err
	}
	if err := s.board.DeleteArticle(c.Request().Context(), actor, aid, articleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) addComment(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	aid, articleID, err := articlePath(c)
	if err != nil {
		return err
	}
	// comments share the article body shape
	req, err := bind[articleRequest](c)
	if err != nil {
		return err
	}

	comment, err := s.board.AddComment(c.Request().Context(), actor, aid, articleID, *req.Title, *req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

func (s *Server) listComments(c echo.Context) error {
	aid, articleID, err := articlePath(c)
	if err != nil {
		return err
	}
	comments, err := s.board.ListComments(c.Request().Context(), aid, articleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (s *Server) deleteComment(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	aid, articleID, err := articlePath(c)
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId", board.MsgCommentNotFound)
	if err != nil {
		return err
	}
	if err := s.board.DeleteComment(c.Request().Context(), actor, aid, articleID, commentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
