//go:build linux || darwin || freebsd

// Package admin exposes interfaces and engine statistics over HTTP.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moqsien/processes/logger"

	"github.com/moqsien/sxnet/engine"
	"github.com/moqsien/sxnet/link"
)

type Server struct {
	*gin.Engine
	eng *engine.Engine
}

// New builds the router, eng may be nil when no engine is running.
func New(eng *engine.Engine) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{Engine: gin.New(), eng: eng}
	s.Use(gin.Recovery())
	s.GET("/links", s.links)
	s.GET("/links/:name", s.link)
	s.GET("/stats", s.stats)
	return s
}

func (that *Server) links(c *gin.Context) {
	all, err := link.Interfaces()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, all)
}

// link accepts an interface name or index.
func (that *Server) link(c *gin.Context) {
	name := c.Param("name")
	var (
		ifi *link.Interface
		err error
	)
	if index, e := strconv.Atoi(name); e == nil {
		ifi, err = link.ByIndex(index)
	} else {
		ifi, err = link.ByName(name)
	}
	switch {
	case errors.Is(err, link.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, ifi)
	}
}

func (that *Server) stats(c *gin.Context) {
	loops := []engine.LoopStats{}
	if that.eng != nil {
		loops = that.eng.Stats()
	}
	var total int32
	for _, l := range loops {
		total += l.Conns
	}
	c.JSON(http.StatusOK, gin.H{"loops": loops, "conns": total})
}

// ListenAndServe serves on address until ctx is done.
func (that *Server) ListenAndServe(ctx context.Context, address string) error {
	srv := &http.Server{Addr: address, Handler: that.Engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Println("admin server is listening on", address)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warningf("admin server shutdown: %v", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
