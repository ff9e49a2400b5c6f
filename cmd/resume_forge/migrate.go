package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/db"
	"github.com/jonathan/resume-forge/internal/rendering"
)

var (
	migrateSeed      bool
	migratePrintDDL  bool
	migrateTemplates string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and seed built-in templates",
	Long: `Create any missing tables, then store every template in the templates directory as a
built-in template named after its file. Seeding is idempotent: an existing built-in with the
same name has its source replaced.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", true, "Seed built-in templates from the templates directory")
	migrateCmd.Flags().StringVar(&migrateTemplates, "templates", "", "Templates directory (defaults to templates_dir)")
	migrateCmd.Flags().BoolVar(&migratePrintDDL, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrintDDL {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), db.Schema())
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	dir := migrateTemplates
	if dir == "" {
		dir = cfg.TemplatesDir
	}
	var templates []builtinTemplate
	if migrateSeed {
		var err error
		if templates, err = loadBuiltinTemplates(dir); err != nil {
			return err
		}
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema applied")

	for _, tmpl := range templates {
		seeded, err := database.SeedTemplate(ctx, tmpl.name, tmpl.source)
		if err != nil {
			return err
		}
		logger.WithField("template", seeded.Name).WithField("id", seeded.ID).Info("seeded built-in template")
	}
	return nil
}

type builtinTemplate struct {
	name   string
	source string
}

// loadBuiltinTemplates reads every .yaml, .yml and .json file in dir, sorted by name, and
// checks that each parses. A missing directory seeds nothing.
func loadBuiltinTemplates(dir string) ([]builtinTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithField("dir", dir).Warn("templates directory not found; nothing to seed")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	var templates []builtinTemplate
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := rendering.LoadTemplateFile(path); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		templates = append(templates, builtinTemplate{
			name:   templateName(entry.Name()),
			source: string(source),
		})
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].name < templates[j].name })
	return templates, nil
}
