package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/imkonsowa/places-chat/maps"
	"github.com/imkonsowa/places-chat/models"
)

type Responder interface {
	Respond(ctx context.Context, query, conversation string, lat, lng float64) (string, error)
}

type Similarity interface {
	RetrieveSimilarPlaces(ctx context.Context, query string, k int) ([]string, error)
	FindSimilarQueries(ctx context.Context, query string, k int) ([]string, error)
}

type QueryLogger interface {
	CreateQueryLog(ctx context.Context, entry *models.QueryLog) error
}

// Server exposes the chat flow and the standalone place helpers over HTTP.
type Server struct {
	responder  Responder
	places     PlaceSource
	similarity Similarity
	queries    QueryLogger
	history    Conversations
	upgrader   websocket.Upgrader
}

// NewServer wires the HTTP surface; history may be nil, in which case session ids are ignored.
func NewServer(responder Responder, places PlaceSource, similarity Similarity, queries QueryLogger, history Conversations) *Server {
	return &Server{
		responder:  responder,
		places:     places,
		similarity: similarity,
		queries:    queries,
		history:    history,
		upgrader:   websocket.Upgrader{},
	}
}

func (s *Server) Engine() *gin.Engine {
	r := gin.Default()

	r.POST("/chat", s.chat)
	r.GET("/chat/ws", s.chatWebSocket)

	r.GET("/places/details", s.placeDetails)
	r.GET("/places/nearby", s.nearbyPlaces)
	r.GET("/places/similar", s.similarPlaces)
	r.GET("/queries/similar", s.similarQueries)

	return r
}

func (s *Server) chat(ctx *gin.Context) {
	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := s.answer(ctx.Request.Context(), req)
	if err != nil {
		slog.Error("chat failed", "error", err)
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, ChatResponse{Response: response})
}

func (s *Server) chatWebSocket(ctx *gin.Context) {
	session := ctx.Query("session_id")

	lat, err := parseFloatQuery(ctx, "lat")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lng, err := parseFloatQuery(ctx, "lng")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lng"})
		return
	}

	c, err := s.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer c.Close()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}

		req := ChatRequest{Query: string(data), Lat: lat, Lng: lng, SessionID: session}

		msg := WebSocketsMessage{Type: "chat"}
		if err := req.Validate(); err != nil {
			msg = WebSocketsMessage{Type: "error", Data: err.Error()}
		} else if response, err := s.answer(ctx.Request.Context(), req); err != nil {
			slog.Error("chat failed", "error", err)
			msg = WebSocketsMessage{Type: "error", Data: err.Error()}
		} else {
			msg.Data = response
		}

		if err := c.WriteJSON(msg); err != nil {
			slog.Error("failed to write to ws connection", "error", err)
			return
		}
	}
}

// answer runs one chat turn. Saving history and the query log happens after the reply and
// only logs on failure.
func (s *Server) answer(ctx context.Context, req ChatRequest) (string, error) {
	conversation := req.Context
	if conversation == "" && req.SessionID != "" && s.history != nil {
		var err error
		conversation, err = s.history.Context(ctx, req.SessionID)
		if err != nil {
			return "", err
		}
	}

	response, err := s.responder.Respond(ctx, req.Query, conversation, req.Lat, req.Lng)
	if err != nil {
		return "", err
	}

	if req.SessionID != "" && s.history != nil {
		if err := s.history.Append(ctx, req.SessionID, req.Query, response); err != nil {
			slog.Warn("failed to save chat history", "session_id", req.SessionID, "error", err)
		}
	}

	if s.queries != nil {
		if err := s.queries.CreateQueryLog(ctx, &models.QueryLog{Query: req.Query, SessionID: req.SessionID}); err != nil {
			slog.Warn("failed to save query log", "error", err)
		}
	}

	return response, nil
}

func (s *Server) placeDetails(ctx *gin.Context) {
	name := ctx.Query("name")
	if name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	place, err := s.places.FetchPlaceDetails(ctx.Request.Context(), name)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if place == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		return
	}

	ctx.JSON(http.StatusOK, place)
}

type nearbyQuery struct {
	Lat    *float64 `form:"lat" binding:"required"`
	Lng    *float64 `form:"lng" binding:"required"`
	Type   string   `form:"type"`
	Radius int      `form:"radius"`
	Limit  int      `form:"limit"`
}

func (s *Server) nearbyPlaces(ctx *gin.Context) {
	var q nearbyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := s.places.FetchVicinityDetails(ctx.Request.Context(), models.NewLocation(*q.Lat, *q.Lng), q.Type, q.Radius, q.Limit)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, results)
}

func (s *Server) similarPlaces(ctx *gin.Context) {
	s.similar(ctx, s.similarity.RetrieveSimilarPlaces)
}

func (s *Server) similarQueries(ctx *gin.Context) {
	s.similar(ctx, s.similarity.FindSimilarQueries)
}

func (s *Server) similar(ctx *gin.Context, search func(ctx context.Context, query string, k int) ([]string, error)) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	k := 0
	if raw := ctx.Query("k"); raw != "" {
		var err error
		if k, err = strconv.Atoi(raw); err != nil || k < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
			return
		}
	}

	texts, err := search(ctx.Request.Context(), query, k)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, texts)
}

func parseFloatQuery(ctx *gin.Context, key string) (float64, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}

	return strconv.ParseFloat(raw, 64)
}

func statusFor(err error) int {
	var upstream *maps.UpstreamError
	switch {
	case errors.Is(err, ErrMalformedClassification), errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
