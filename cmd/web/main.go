package main

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tomz197/peckplay/internal/config"
	"github.com/tomz197/peckplay/internal/logging"
)

const (
	defaultHost      = "0.0.0.0"
	defaultPort      = "8080"
	defaultMotionURL = "ws://localhost:8090/motion"
)

// The motion remote: a phone opens this page and streams devicemotion
// samples to the playground host's motion receiver.
//
//go:embed index.html
var htmlPage string

func main() {
	logger, _, err := logging.New(logging.Options{
		Level:  config.GetEnv("PECK_LOG_LEVEL", "info"),
		Prefix: "web",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "peckplay-web: %v\n", err)
		os.Exit(1)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	motionURL := config.GetEnv("MOTION_URL", defaultMotionURL)
	page := strings.ReplaceAll(htmlPage, "{{.MotionURL}}", motionURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})

	addr := fmt.Sprintf("%s:%s", host, port)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("starting motion remote page", "url", "http://"+addr, "motion", motionURL)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
