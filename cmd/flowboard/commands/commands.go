package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/flowboard/core/internal/adapters/tui"
	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/database"
	"github.com/flowboard/core/internal/infrastructure/server"
	"github.com/flowboard/core/internal/ports"
)

// Set via ldflags
var (
	version = "dev"
	commit  = "none"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the FlowBoard web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	var source string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage postgres migrations (up, down, version). The sqlite store creates its schema on open.",
	}
	migrateCmd.PersistentFlags().StringVar(&source, "source", "file://migrations", "Migration source URL")

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(source, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(source, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(source, "version")
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management for the local identity provider",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			if email == "" || password == "" {
				return errors.New("email and password are required")
			}
			if name == "" {
				name = strings.SplitN(email, "@", 2)[0]
			}
			return createUser(cmd.Context(), email, name, password, entities.Role(role))
		},
	}

	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("name", "", "Display name (defaults to the email's local part)")
	createUserCmd.Flags().String("role", "", "member or guest (derived from the email domain when empty)")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewBoardCommand opens the terminal board
func NewBoardCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the board in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd.Context(), token)
		},
	}
	cmd.Flags().StringVar(&token, "token", os.Getenv("FLOWBOARD_TOKEN"), "Resume an existing session")
	return cmd
}

// NewTasksCommand creates the tasks command
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect the task table",
	}

	var (
		status string
		token  string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in id order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTasks(cmd.Context(), token, entities.TaskStatus(status))
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Only tasks in this lane (todo, inprogress, done)")
	listCmd.Flags().StringVar(&token, "token", os.Getenv("FLOWBOARD_TOKEN"), "Access token to read with")

	tasksCmd.AddCommand(listCmd)
	return tasksCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print FlowBoard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "FlowBoard %s (commit %s)\n", version, commit)
		},
	}
}

func runServer(parent context.Context) error {
	cfg, appLogger, err := loadConfig("")
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := buildStack(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer s.Close()

	srv, err := server.New(cfg, s.dependencies(), appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	appLogger.Infow("Starting FlowBoard server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"store", cfg.Store.Driver,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigration(source, direction string) error {
	cfg, appLogger, err := loadConfig("")
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("migrations apply to the postgres store only (store driver is %q)", cfg.Store.Driver)
	}

	db, err := database.New("postgres", cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}
		fmt.Printf("Current migration version: %d\n", v)
		fmt.Printf("Dirty: %t\n", dirty)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	appLogger.Infow("Migration completed", "direction", direction)
	fmt.Printf("Migration %s completed successfully\n", direction)
	return nil
}

func createUser(ctx context.Context, email, name, password string, role entities.Role) error {
	cfg, appLogger, err := loadConfig("")
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	s, err := buildStack(contextOrBackground(ctx), cfg, appLogger)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.identity == nil {
		return errors.New("users are managed by the hosted backend for the rest store")
	}

	user, err := s.identity.CreateUser(contextOrBackground(ctx), email, name, password, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %d\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Name: %s\n", user.Name)
	fmt.Printf("  Role: %s\n", user.Role)
	return nil
}

func runBoard(parent context.Context, token string) error {
	cfg, appLogger, err := loadConfig("stderr")
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx := contextOrBackground(parent)
	s, err := buildStack(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer s.Close()

	session := services.NewSession(s.auth)
	if token != "" {
		if err := session.Init(ctx, token); err != nil {
			appLogger.Warnw("Stored session is no longer valid", "error", err)
		}
	}

	return tui.Run(tui.NewApp(ctx, session, s.boards, appLogger))
}

func listTasks(parent context.Context, token string, status entities.TaskStatus) error {
	cfg, appLogger, err := loadConfig("stderr")
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx := contextOrBackground(parent)
	s, err := buildStack(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer s.Close()

	if token != "" {
		ctx = ports.WithAccessToken(ctx, token)
	}

	var tasks []entities.Task
	if status != "" {
		tasks, err = s.tasks.ListByStatus(ctx, status)
	} else {
		tasks, err = s.tasks.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTYPE\tPOINTS\tOWNER\tASSIGNEE\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n", t.ID, t.Status, t.Priority, t.Type, t.Points, t.OwnerID, t.Assignee, t.Title)
	}
	return w.Flush()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
