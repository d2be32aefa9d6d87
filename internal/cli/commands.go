package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/utafrali/ScentGo/internal/auth"
	"github.com/utafrali/ScentGo/internal/config"
	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/event"
	"github.com/utafrali/ScentGo/internal/search"
	"github.com/utafrali/ScentGo/internal/stats"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

func newMigrateCommand(opts *RootOptions, d deps) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending schema and seed migrations to PostgreSQL",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, opts, d, func(cfg *config.Config) {
				cfg.RunMigrations = true
			})
			if err != nil {
				return err
			}
			defer s.backend.Close()

			if s.backend.Driver != config.BackendPostgres {
				return fmt.Errorf("migrate requires the %s backend, got %s", config.BackendPostgres, s.backend.Driver)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// SeedOptions controls the demo data written by seed.
type SeedOptions struct {
	Email      string
	Password   string
	Username   string
	PerPerfume int
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	UserID      string `json:"user_id"`
	UserCreated bool   `json:"user_created"`
	Perfumes    int    `json:"perfumes"`
	Reviews     int    `json:"reviews"`
}

var seedComments = []string{
	"Lasts all day and gets compliments.",
	"A bit strong on first spray, settles nicely.",
	"Perfect for evenings.",
	"Fresh and clean, great for summer.",
	"Not for me, but well made.",
}

func newSeedCommand(opts *RootOptions, d deps) *cobra.Command {
	seed := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo account and rated reviews for every perfume",
		Long: `Create a demo account (or reuse it when the email is taken) and write
--per-perfume reviews for each catalog perfume, so ratings show up in stats.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed.PerPerfume < 0 {
				return fmt.Errorf("--per-perfume must not be negative")
			}
			s, err := open(cmd, opts, d, nil)
			if err != nil {
				return err
			}
			defer s.backend.Close()

			res, err := runSeed(cmd, s, seed)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s (created: %t), %d reviews over %d perfumes\n",
				res.UserID, res.UserCreated, res.Reviews, res.Perfumes)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed.Email, "email", "demo@scentgo.app", "demo account email")
	cmd.Flags().StringVar(&seed.Password, "password", "scentgo-demo", "demo account password")
	cmd.Flags().StringVar(&seed.Username, "username", "demo", "demo account username")
	cmd.Flags().IntVar(&seed.PerPerfume, "per-perfume", 2, "reviews to write per perfume")

	return cmd
}

func runSeed(cmd *cobra.Command, s *session, seed *SeedOptions) (*SeedResult, error) {
	ctx := cmd.Context()
	res := &SeedResult{}

	authService := auth.NewService(s.backend.Users, auth.NewJWTManager(s.cfg.JWTSecret, s.cfg.JWTExpiry), event.Noop{}, 0, s.logger)
	created, err := authService.SignUp(ctx, auth.SignUpInput{
		Email:    seed.Email,
		Password: seed.Password,
		Username: seed.Username,
	})
	switch {
	case err == nil:
		res.UserID = created.User.ID
		res.UserCreated = true
	case errors.Is(err, apperrors.ErrAlreadyExists):
		user, err := s.backend.Users.GetByEmail(ctx, strings.ToLower(seed.Email))
		if err != nil {
			return nil, fmt.Errorf("load existing demo user: %w", err)
		}
		res.UserID = user.ID
	default:
		return nil, fmt.Errorf("create demo user: %w", err)
	}

	perfumes, err := s.backend.Perfumes.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list perfumes: %w", err)
	}
	res.Perfumes = len(perfumes)

	now := time.Now().UTC()
	for i, p := range perfumes {
		for j := 0; j < seed.PerPerfume; j++ {
			n := i*seed.PerPerfume + j
			rv := &domain.Review{
				ID:        uuid.NewString(),
				PerfumeID: p.ID,
				UserID:    res.UserID,
				Rating:    n%5 + 1,
				Comment:   seedComments[n%len(seedComments)],
				CreatedAt: now.Add(-time.Duration(n) * time.Minute),
			}
			if err := s.backend.Reviews.Create(ctx, rv); err != nil {
				return nil, fmt.Errorf("create review for perfume %s: %w", p.ID, err)
			}
			res.Reviews++
		}
	}

	s.logger.Info("seed completed",
		slog.String("user_id", res.UserID),
		slog.Int("reviews", res.Reviews),
	)
	return res, nil
}

func newSearchCommand(opts *RootOptions, d deps) *cobra.Command {
	return &cobra.Command{
		Use:          "search [query...]",
		Short:        "List catalog perfumes with stats, filtered by query",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, opts, d, nil)
			if err != nil {
				return err
			}
			defer s.backend.Close()

			agg := stats.NewAggregator(s.backend.Perfumes, s.backend.Reviews, s.cfg.RemoteTimeout, s.logger)
			perfumes, err := agg.Aggregate(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			return writePerfumes(cmd.OutOrStdout(), opts.Format, search.Filter(perfumes, strings.Join(args, " ")))
		},
	}
}

func newStatsCommand(opts *RootOptions, d deps) *cobra.Command {
	return &cobra.Command{
		Use:          "stats <perfume-id>",
		Short:        "Show the average rating and review count of one perfume",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, opts, d, nil)
			if err != nil {
				return err
			}
			defer s.backend.Close()

			agg := stats.NewAggregator(s.backend.Perfumes, s.backend.Reviews, s.cfg.RemoteTimeout, s.logger)
			p, err := agg.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load perfume %s: %w", args[0], err)
			}
			return writePerfumes(cmd.OutOrStdout(), opts.Format, []domain.Perfume{*p})
		},
	}
}
