package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
}

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func NewService(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	var (
		conn *gorm.DB
		err  error
	)
	switch driver {
	case DriverPostgres:
		conn, err = openPostgres(cfg.Postgres, serviceLog)
	case "", DriverSQLite:
		driver = DriverSQLite
		conn, err = openSQLite(cfg.SQLitePath, serviceLog)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return &Service{db: conn, driver: driver, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }
func (s *Service) Driver() string { return s.driver }

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Running auto migration", "driver", s.driver)
	return AutoMigrateAll(s.db)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
