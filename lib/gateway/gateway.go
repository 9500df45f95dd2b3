// Package gateway maps a small HTTP surface onto the receptionist and guild.
package gateway

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/receptionist"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Gateway struct {
	receptionist *receptionist.Receptionist
	guild        *matcher.Guild
	logger       *zap.Logger

	router *gin.Engine
}

func NewGateway(r *receptionist.Receptionist, g *matcher.Guild, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	T := &Gateway{
		receptionist: r,
		guild:        g,
		logger:       logger,
		router:       gin.New(),
	}

	T.router.Use(gin.Recovery())
	T.router.Use(T.requestLogger())

	T.router.GET("/status", T.status)
	T.router.POST("/request", T.request)
	T.router.GET("/mercenaries", T.mercenaries)
	T.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return T
}

func (T *Gateway) Handler() http.Handler {
	return T.router
}

func (T *Gateway) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		T.logger.Debug(
			"http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (T *Gateway) status(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.Acknowledgement{
		Ok: T.receptionist.Active(),
	})
}

// request submits a single quest and waits for its acknowledgement. If the client goes away
// first the quest is cancelled.
func (T *Gateway) request(c *gin.Context) {
	var details protocol.RequestDetails
	if err := c.ShouldBindJSON(&details); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stream := &single{details: &details}
	if err := T.receptionist.Serve(c.Request.Context(), "http", stream); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if stream.ack == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request was not acknowledged"})
		return
	}

	c.JSON(http.StatusOK, stream.ack)
}

func (T *Gateway) mercenaries(c *gin.Context) {
	roster := T.guild.Roster()
	res := make([]protocol.MercenaryStatus, 0, len(roster))
	for _, m := range roster {
		res = append(res, protocol.MercenaryStatus{
			Identifier: m.ID,
			Offer:      m.Offer,
			Busy:       m.ClaimedBy != "",
			Quest:      m.ClaimedBy,
		})
	}
	c.JSON(http.StatusOK, res)
}

// single is a request stream carrying exactly one request.
type single struct {
	details *protocol.RequestDetails
	read    bool
	ack     *protocol.RequestAcknowledgement
}

func (T *single) Recv() (*protocol.RequestDetails, error) {
	if T.read {
		return nil, io.EOF
	}
	T.read = true
	return T.details, nil
}

func (T *single) Send(ack *protocol.RequestAcknowledgement) error {
	T.ack = ack
	return nil
}

var _ receptionist.Stream = (*single)(nil)
