package passport

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/infrastructure/config"
	"github.com/openfun/ashley-sub000/internal/infrastructure/database"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

var (
	env          string
	consumerSlug string
	title        string
	consumerURL  string
)

// NewCommand builds the passport provisioning commands. A passport pairs
// an OAuth key/secret with a consumer; the secret is printed once at
// creation and never stored anywhere readable afterwards.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passport",
		Short: "Manage LTI consumers and their passports",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newCreateConsumerCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newCreateConsumerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-consumer",
		Short: "Register a consumer site",
		RunE:  runCreateConsumer,
	}

	cmd.Flags().StringVar(&consumerSlug, "slug", "", "Consumer slug (required)")
	cmd.Flags().StringVar(&title, "title", "", "Display title (required)")
	cmd.Flags().StringVar(&consumerURL, "url", "", "Consumer base URL, e.g. https://lms.example.com (required)")
	cmd.MarkFlagRequired("slug")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("url")

	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a passport for a consumer",
		RunE:  runCreate,
	}

	cmd.Flags().StringVar(&consumerSlug, "consumer", "", "Consumer slug the passport belongs to (required)")
	cmd.Flags().StringVar(&title, "title", "", "Passport title (required)")
	cmd.MarkFlagRequired("consumer")
	cmd.MarkFlagRequired("title")

	return cmd
}

func initEnv() error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}

func runCreateConsumer(cmd *cobra.Command, args []string) error {
	if err := initEnv(); err != nil {
		return err
	}
	defer database.Close()

	consumer, err := lti.NewConsumer(consumerSlug, title, consumerURL)
	if err != nil {
		return err
	}

	repo := repository.NewConsumerRepository(database.Get())
	if err := repo.Create(context.Background(), consumer); err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	fmt.Printf("consumer created:\n  slug: %s\n  title: %s\n  url: %s\n", consumer.Slug(), consumer.Title(), consumer.URL())
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	if err := initEnv(); err != nil {
		return err
	}
	defer database.Close()

	db := database.Get()
	ctx := context.Background()

	consumer, err := repository.NewConsumerRepository(db).GetBySlug(ctx, consumerSlug)
	if err != nil {
		return fmt.Errorf("failed to look up consumer: %w", err)
	}
	if consumer == nil {
		return fmt.Errorf("unknown consumer %q", consumerSlug)
	}

	p, err := lti.NewPassport(consumerSlug, title)
	if err != nil {
		return err
	}

	if err := repository.NewPassportRepository(db).Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create passport: %w", err)
	}

	fmt.Printf("passport created:\n  consumer: %s\n  oauth_consumer_key: %s\n  shared_secret: %s\n", consumerSlug, p.ConsumerKey(), p.SharedSecret())
	fmt.Println("store the shared secret now, it is only shown once")
	return nil
}
