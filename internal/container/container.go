// Package container provides dependency injection for the stmt-csv
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/stmt-csv/internal/categorizer"
	"fjacquet/stmt-csv/internal/common"
	"fjacquet/stmt-csv/internal/config"
	"fjacquet/stmt-csv/internal/dateutils"
	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/pipeline"
	"fjacquet/stmt-csv/internal/source"
	"fjacquet/stmt-csv/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger logging.Logger
	config *config.Config
	store  store.RuleLoader
	source source.Provider
	reader common.RowReader
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	cm, ok := config.Encodings[strings.ToLower(cfg.Input.Encoding)]
	if !ok && cfg.Input.Encoding != "" {
		return nil, fmt.Errorf("unsupported input encoding: %s", cfg.Input.Encoding)
	}

	var provider source.Provider
	switch {
	case cfg.Input.Directory != "":
		provider = source.NewDirectoryProvider(cfg.Input.Directory, cfg.Input.Extension)
	case cfg.Input.Manifest != "":
		provider = source.NewManifestProvider(cfg.Input.Manifest)
	default:
		return nil, fmt.Errorf("no input source configured")
	}

	c := &Container{
		logger: logger,
		config: cfg,
		store:  store.NewRuleStore(cfg.Rules.File, logger),
		source: provider,
		reader: common.NewCSVRowReader(',', cm, logger),
	}

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldSource, provider.Describe()),
		logging.F(logging.FieldEncoding, cfg.Input.Encoding))
	return c, nil
}

// OutputPath returns the destination file for a run. An empty name falls
// back to "<prefix>-YYYY-MM-DD" for the given time.
func (c *Container) OutputPath(name string, now time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = dateutils.DefaultOutputName(c.config.Output.Prefix, now)
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		name += ".csv"
	}
	return filepath.Join(c.config.Output.Directory, name)
}

// NewDriver builds a pipeline driver writing to OutputPath(name, now).
func (c *Container) NewDriver(name string, now time.Time) *pipeline.Driver {
	delimiter := ','
	if c.config.CSV.Delimiter != "" {
		delimiter = c.config.Delimiter()
	}
	sink := common.NewCSVSink(c.OutputPath(name, now), delimiter, c.config.CSV.IncludeHeaders, c.logger)

	return pipeline.NewDriver(pipeline.Options{
		Source:          c.source,
		Rules:           c.store,
		Sink:            sink,
		Reader:          c.reader,
		DefaultCategory: c.config.Categorization.DefaultCategory,
		ExpenseSign:     c.config.Input.ExpenseSign,
		Logger:          c.logger,
	})
}

// NewCategorizer loads the rule set and returns a ready Categorizer.
func (c *Container) NewCategorizer() (*categorizer.Categorizer, error) {
	rules, err := c.store.LoadRules()
	if err != nil {
		return nil, err
	}
	return categorizer.New(rules, c.config.Categorization.DefaultCategory, c.logger), nil
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
