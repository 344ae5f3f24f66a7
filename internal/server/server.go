package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/article/internal/auth"
	"github.com/emrgen/article/internal/cache"
	"github.com/emrgen/article/internal/compress"
	"github.com/emrgen/article/internal/config"
	"github.com/emrgen/article/internal/jobs"
	"github.com/emrgen/article/internal/queue"
	"github.com/emrgen/article/internal/service"
	"github.com/emrgen/article/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start starts the rpc endpoint and the background jobs
func Start(httpPort string) error {
	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	rdb := config.GetDb(cnf)

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	articleStore := store.NewGormStore(rdb)
	err = articleStore.Migrate()
	if err != nil {
		return err
	}

	var articleCache cache.ArticleCache = cache.NewNullArticleCache()
	if cnf.RedisAddr != "" {
		articleCache = cache.NewRedisArticleCache(cnf.RedisAddr)
	}

	var articleQueue queue.ArticleQueue = queue.NewNullArticleQueue()
	if cnf.KafkaAddr != "" {
		articleQueue, err = queue.NewKafkaArticleQueue(cnf.KafkaAddr)
		if err != nil {
			return err
		}
	}
	defer articleQueue.Close()

	// NOTE: with no AUTH_URL the token is not verified and the bearer
	// token is trusted as the caller uid
	var verifier auth.TokenVerifier = auth.NewNullTokenVerifier()
	if cnf.AuthURL != "" {
		verifier = auth.NewProviderTokenVerifier(cnf.AuthURL)
	}

	articles := service.NewArticleService(articleStore, articleCache, articleQueue)
	ledger := service.NewLedgerService(compress.NameGZip, articleStore)
	users := service.NewUserService(articleStore)

	apiMux := http.NewServeMux()
	apiMux.Handle("/api/rpc", RequestTimeMiddleware(NewHandler(articles, ledger, users, verifier)))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(apiMux),
	}

	executor := jobs.NewTaskExecutor(
		[]jobs.Job{},
		[]jobs.CronJob{
			jobs.NewChainAuditTask("@every 10m", articleStore),
		},
	)
	executor.Run()

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting rpc endpoint on: ", httpPort)
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting rpc endpoint: %v", err)
			}
		}
		logrus.Infof("rpc endpoint stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	executor.Stop()
	err = restServer.Shutdown(context.Background())
	if err != nil {
		logrus.Errorf("error stopping rpc endpoint: %v", err)
	}

	wg.Wait()

	return nil
}
