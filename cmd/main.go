package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dchat/client/internal/api"
	"dchat/client/internal/config"
	"dchat/client/internal/directory"
	"dchat/client/internal/session"
)

var (
	flagConfig  string
	flagEmail   string
	flagName    string
	flagImage   string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dchat",
	Short: "Terminal client for the DChat backend",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path (default $HOME/.dchat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	loginCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&flagName, "name", "", "display name")
	registerCmd.Flags().StringVar(&flagImage, "image", "", "optional profile image file")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, roomsCmd, usersCmd, chatCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		// Не помилка: .env необов'язковий.
		log.Debug().Msg("no .env file loaded")
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// app bundles everything a command needs.
type app struct {
	cfg   *config.Config
	store *session.Store
	api   *api.Client
	log   zerolog.Logger
}

func newApp() (*app, error) {
	logger := log.Logger
	if flagVerbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.TokenPath, logger)
	return &app{
		cfg:   cfg,
		store: store,
		api:   api.NewClient(cfg.APIURL, store, logger),
		log:   logger,
	}, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		email := flagEmail
		if email == "" {
			fmt.Print("email: ")
			fmt.Scanln(&email)
		}
		password, err := readPassword("password: ")
		if err != nil {
			return err
		}

		data, err := a.api.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := a.store.SetToken(data.Token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Printf("logged in as %s (token valid until %s)\n", a.store.UserName(), data.ExpireDate.Format(time.RFC822))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if flagName == "" || flagEmail == "" {
			return fmt.Errorf("--name and --email are required")
		}
		password, err := readPassword("password: ")
		if err != nil {
			return err
		}
		if err := a.api.Register(cmd.Context(), flagName, flagEmail, password, flagImage); err != nil {
			return err
		}
		fmt.Println("account created, now run: dchat login")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the session and drop the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.api.Logout(cmd.Context()); err != nil {
			// Токен прибираємо локально в будь-якому разі.
			a.log.Warn().Err(err).Msg("server-side logout failed")
		}
		a.store.Clear()
		fmt.Println("logged out")
		return nil
	},
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List your rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		rooms := directory.NewRoomDirectory(a.api, a.log)
		if err := rooms.Refresh(cmd.Context()); err != nil {
			return err
		}
		for i, r := range rooms.Rooms() {
			kind := "group"
			if r.IsPrivate() {
				kind = "private"
			}
			fmt.Printf("%2d. %-30s [%s] %s\n", i+1, r.Title(), kind, lastSeen(r.LastMessageAt))
		}
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		users := directory.NewUserDirectory(a.api, a.cfg.PageSize, a.log)
		if err := users.Refresh(cmd.Context()); err != nil {
			return err
		}
		for i, u := range users.Users() {
			marker := " "
			if u.IsOnline {
				marker = "*"
			}
			fmt.Printf("%2d. %s %s\n", i+1, marker, u.Name)
		}
		return nil
	},
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func lastSeen(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02 Jan 15:04")
}

// commandContext is a helper for commands that need cancellation beyond
// cobra's default context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
