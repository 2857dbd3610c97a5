package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	mongoURI        = flag.String("mongo_uri", "", "mongo db uri")
	demandPathStr   = flag.String("demand", "", "demand table [format: {fspath} or {db}.{col}]")
	facilityPathStr = flag.String("facilities", "", "facility table [format: {fspath} or {db}.{col}]")
	edgePathStr     = flag.String("edges", "", "transit edge table [format: {fspath} or {db}.{col}]")
	cacheDir        = flag.String("cache", "", "input cache dir path (empty means disable cache)")
	policyPath      = flag.String("policy", "", "selection policy yaml file (empty means defaults)")
	httpEndpoint    = flag.String("listen", "localhost:53101", "HTTP listening address")
	logLevel        = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "localhost:53102", "pprof listening address")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func mustPath(name, s string) *Path {
	p, err := NewPath(s)
	if err != nil {
		logrus.Fatalf("invalid %s path: %s", name, err)
	}
	if p == nil {
		logrus.Fatalf("%s table is required", name)
	}
	return p
}

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}

	demandPath := mustPath("demand", *demandPathStr)
	facilityPath := mustPath("facilities", *facilityPathStr)
	edgePath := mustPath("edges", *edgePathStr)
	pol, err := ReadPolicy(*policyPath)
	if err != nil {
		logrus.Fatalf("invalid policy: %s", err)
	}

	server := NewSitingServer(
		*mongoURI,
		demandPath, facilityPath, edgePath,
		*cacheDir,
		pol,
	)

	if *pprofAddr != "" {
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		runBenchmark(server)
		return
	}

	// HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    *httpEndpoint,
		Handler: h2c.NewHandler(server.Handler(), &http2.Server{}),
	}

	// graceful exit on ctrl+c / kill, a second signal kills hard
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1)
		}()
		s.Close()
		server.Close()
		os.Exit(0)
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	time.Sleep(1 * time.Second)
	log.Info("siting closes")
}
