package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status        string `json:"status"`
	GoVersion     string `json:"go_version"`
	Uptime        string `json:"uptime"`
	Store         string `json:"store"`
	MaxTasks      int    `json:"max_tasks"`
	MaxProcessors int    `json:"max_processors"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storeState := "disabled"
	if s.store != nil {
		storeState = "sqlite"
	}

	s.replyTo(w, r).ok(healthResponse{
		Status:        "healthy",
		GoVersion:     runtime.Version(),
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		Store:         storeState,
		MaxTasks:      s.maxTasks,
		MaxProcessors: s.maxProcessors,
	})
}
