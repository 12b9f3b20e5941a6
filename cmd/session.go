package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-manager.com/task-manager/internal/client"
	config "task-manager.com/task-manager/internal/configs"
	"task-manager.com/task-manager/internal/http/validators"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/store"
)

const storeShutdownTimeout = 5 * time.Second

// workspace is a signed-in client with a loaded store.
type workspace struct {
	client *client.Client
	store  *store.Store
	log    *zap.SugaredLogger

	// ended is closed when the session is signed out or expires.
	ended chan struct{}
}

func (w *workspace) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), storeShutdownTimeout)
	defer cancel()
	w.store.Shutdown(ctx)
	if err := w.client.SignOut(ctx); err != nil {
		w.log.Debugw("sign out failed", "error", err)
	}
	_ = w.log.Sync()
}

func loadClientConfig() (config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func credentials(cfg config.Config) model.Credentials {
	creds := model.Credentials{Email: cfg.TasksEmail, Password: cfg.TasksPassword}
	if email != "" {
		creds.Email = email
	}
	if password != "" {
		creds.Password = password
	}
	return creds
}

// openWorkspace signs in and loads the user's data. The store is shut down
// as soon as the session ends, whatever the reason.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	cfg, log, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	creds := credentials(cfg)
	if err := validators.ValidateCredentials(creds, false); err != nil {
		return nil, err
	}

	c := client.New(cfg.APIURL, client.WithLogger(log))
	session, err := c.SignIn(cmd.Context(), creds)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	st := store.New(c, session,
		store.WithLogger(log),
		store.WithNotifier(printNotifier{out: cmd.ErrOrStderr()}),
	)
	ended := make(chan struct{})
	var endOnce sync.Once
	c.OnAuthChange(func(ev client.AuthEvent) {
		if ev.Type == client.SignedIn {
			return
		}
		log.Infow("session ended, closing store", "reason", ev.Type)
		endOnce.Do(func() { close(ended) })
		// May fire from inside a store call; shut down off that goroutine.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), storeShutdownTimeout)
			defer cancel()
			st.Shutdown(ctx)
		}()
	})

	if err := st.FetchAll(cmd.Context()); err != nil {
		_ = c.SignOut(cmd.Context())
		return nil, err
	}

	return &workspace{client: c, store: st, log: log, ended: ended}, nil
}

// printNotifier writes store notices the way the dashboard toasts them.
type printNotifier struct {
	out io.Writer
}

func (p printNotifier) Notify(n store.Notice) {
	if n.Level == store.LevelError {
		fmt.Fprintf(p.out, "error: %s: %s\n", n.Title, n.Message)
		return
	}
	if n.Message == "" {
		fmt.Fprintln(p.out, n.Title)
		return
	}
	fmt.Fprintf(p.out, "%s: %s\n", n.Title, n.Message)
}
