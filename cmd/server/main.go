package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	clientfakes "github.com/yartat/IdentityServer4/clients/repofakes"
	"github.com/yartat/IdentityServer4/endsession"
	grantfakes "github.com/yartat/IdentityServer4/grants/repofakes"
	"github.com/yartat/IdentityServer4/internal/config"
	msgfakes "github.com/yartat/IdentityServer4/messages/repofakes"
	"github.com/yartat/IdentityServer4/server"
	"github.com/yartat/IdentityServer4/stores/redisstore"
	sessionfakes "github.com/yartat/IdentityServer4/usersession/repofakes"
)

// messageRetention bounds how long parked interaction state survives.
const messageRetention = time.Hour

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	options, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	displayAppname(options.AppName)

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	srv, err := server.New(options, buildStores(options), server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: ":" + options.Port, Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildStores selects the persistence backing: Redis when an address is
// configured, in-memory otherwise. Client registrations stay in memory in
// both modes; they are configuration, not runtime state.
func buildStores(options *config.Options) server.Stores {
	stores := server.Stores{
		Clients: clientfakes.NewFakeClientRepo(),
	}

	if options.Redis.Addr == "" {
		stores.Sessions = sessionfakes.NewFakeSessionRepo()
		stores.Grants = grantfakes.NewFakeGrantStore()
		stores.AuthorizeParams = msgfakes.NewFakeStore[url.Values]()
		stores.LogoutMessages = msgfakes.NewFakeStore[endsession.LogoutMessage]()
		stores.EndSessionMessages = msgfakes.NewFakeStore[endsession.EndSession]()
		return stores
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Redis.Addr,
		Password: options.Redis.Password,
		DB:       options.Redis.DB,
	})
	stores.Sessions = redisstore.NewSessionStore(client, 0)
	stores.Grants = redisstore.NewGrantStore(client)
	stores.AuthorizeParams = redisstore.NewMessageStore[url.Values](client, "authz", messageRetention)
	stores.LogoutMessages = redisstore.NewMessageStore[endsession.LogoutMessage](client, "logout", messageRetention)
	stores.EndSessionMessages = redisstore.NewMessageStore[endsession.EndSession](client, "endsession", messageRetention)
	return stores
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
