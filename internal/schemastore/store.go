// Package schemastore persists content schemas in a relational database
// through gorm. SQLite and PostgreSQL are supported.
package schemastore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/observability"
)

const (
	// DriverSQLite selects gorm.io/driver/sqlite.
	DriverSQLite = "sqlite"
	// DriverPostgres selects gorm.io/driver/postgres.
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when no schema with the requested name is stored.
	ErrNotFound = errors.New("schema not found")
	// ErrUnsupportedDriver is returned by Open for unknown driver names.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrInvalidSchema is returned when saving a schema without a name.
	ErrInvalidSchema = errors.New("invalid schema")
)

// Store reads and writes content schemas.
type Store struct {
	db *gorm.DB
}

// Option customizes a Store.
type Option func(*gorm.DB) error

// WithObservability registers the tracing callbacks of cfg on the database
// and, when Server-Timing is enabled, the DB time callbacks.
func WithObservability(cfg *observability.Config) Option {
	return func(db *gorm.DB) error {
		if err := observability.RegisterGORMCallbacks(db, cfg); err != nil {
			return fmt.Errorf("failed to register tracing callbacks: %w", err)
		}
		if cfg.ServerTimingEnabled() {
			if err := observability.RegisterServerTimingCallbacks(db); err != nil {
				return fmt.Errorf("failed to register server timing callbacks: %w", err)
			}
		}
		return nil
	}
}

// Dialector returns the gorm dialector for a driver name and DSN.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("%w: postgres requires a DSN", ErrUnsupportedDriver)
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q, use %q or %q", ErrUnsupportedDriver, driver, DriverSQLite, DriverPostgres)
	}
}

// Open connects to the database and prepares a store on it.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return New(db, opts...)
}

// New prepares a store on an open database, migrating its tables.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	for _, opt := range opts {
		if err := opt(db); err != nil {
			return nil, err
		}
	}
	if err := db.AutoMigrate(&ContentType{}, &PropertyDefinition{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema store: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores the schema under its name. The properties of a previously
// stored schema with the same name are replaced.
func (s *Store) Save(ctx context.Context, schema *metadata.Schema) error {
	if schema == nil || schema.Name() == "" {
		return fmt.Errorf("%w: a name is required", ErrInvalidSchema)
	}
	file := schema.File()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contentType ContentType
		err := tx.Where("name = ?", file.Name).First(&contentType).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			contentType = ContentType{Name: file.Name, Open: schema.IsOpen()}
			if err := tx.Create(&contentType).Error; err != nil {
				return fmt.Errorf("failed to create schema %s: %w", file.Name, err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up schema %s: %w", file.Name, err)
		default:
			if err := tx.Model(&contentType).Update("is_open", schema.IsOpen()).Error; err != nil {
				return fmt.Errorf("failed to update schema %s: %w", file.Name, err)
			}
			if err := tx.Where("content_type_id = ?", contentType.ID).Delete(&PropertyDefinition{}).Error; err != nil {
				return fmt.Errorf("failed to replace properties of schema %s: %w", file.Name, err)
			}
		}

		if len(file.Properties) == 0 {
			return nil
		}
		definitions := make([]PropertyDefinition, 0, len(file.Properties))
		for _, p := range file.Properties {
			definitions = append(definitions, PropertyDefinition{
				ContentTypeID: contentType.ID,
				Path:          p.Path,
				Kind:          p.Type,
				Collection:    p.Collection,
			})
		}
		if err := tx.Create(&definitions).Error; err != nil {
			return fmt.Errorf("failed to store properties of schema %s: %w", file.Name, err)
		}
		return nil
	})
}

// Load rebuilds the schema stored under name.
func (s *Store) Load(ctx context.Context, name string) (*metadata.Schema, error) {
	var contentType ContentType
	err := s.db.WithContext(ctx).
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("path") }).
		Where("name = ?", name).
		First(&contentType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}

	open := contentType.Open
	file := metadata.SchemaFile{Name: contentType.Name, Open: &open}
	for _, p := range contentType.Properties {
		file.Properties = append(file.Properties, metadata.PropertyFile{
			Path:       p.Path,
			Type:       p.Kind,
			Collection: p.Collection,
		})
	}
	schema, err := file.Schema()
	if err != nil {
		return nil, fmt.Errorf("stored schema %s is invalid: %w", name, err)
	}
	return schema, nil
}

// List returns the names of all stored schemas in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&ContentType{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return names, nil
}

// Delete removes the schema stored under name together with its properties.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contentType ContentType
		err := tx.Where("name = ?", name).First(&contentType).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err != nil {
			return fmt.Errorf("failed to look up schema %s: %w", name, err)
		}
		if err := tx.Where("content_type_id = ?", contentType.ID).Delete(&PropertyDefinition{}).Error; err != nil {
			return fmt.Errorf("failed to delete properties of schema %s: %w", name, err)
		}
		if err := tx.Delete(&contentType).Error; err != nil {
			return fmt.Errorf("failed to delete schema %s: %w", name, err)
		}
		return nil
	})
}
