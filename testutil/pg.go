//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"adventureworks/config"
)

const (
	testContainerDatabase = "testdb"
	testContainerUser     = "testuser"
	testContainerPassword = "testpassword"
	TestSchema            = "adventure_works"

	// ServerFixtureDir каталог внутри контейнера, куда копируются CSV из testdata
	ServerFixtureDir = "/tmp/adventure_works"
)

const (
	pgTestContainerPort        nat.Port = "5432"
	pgTestContainerImage                = "postgres:17"
	pgTestContainerExposedPort          = "5432/tcp"
)

// PgContainerSuite поднимает PostgreSQL в контейнере на время набора тестов
type PgContainerSuite struct {
	suite.Suite
	Container testcontainers.Container
	Config    *config.Config
	DB        *sql.DB
}

func (s *PgContainerSuite) SetupSuite() {
	ctx := context.Background()
	files, err := fixtureFiles()
	s.Require().NoErrorf(err, "failed to list fixtures")

	req := testcontainers.ContainerRequest{
		Image:        pgTestContainerImage,
		ExposedPorts: []string{pgTestContainerExposedPort},
		Env: map[string]string{
			"POSTGRES_USER":     testContainerUser,
			"POSTGRES_PASSWORD": testContainerPassword,
			"POSTGRES_DB":       testContainerDatabase,
			"LANG":              "en_US.utf8",
		},
		Files:      files,
		WaitingFor: wait.ForSQL(pgTestContainerExposedPort, "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s?sslmode=disable",
				testContainerUser, testContainerPassword, host, port.Port(), testContainerDatabase,
			)
		}),
	}

	s.Container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoErrorf(err, "failed to start PostgreSQL Container")

	host, err := s.Container.Host(ctx)
	s.Require().NoErrorf(err, "failed to get Container host")
	port, err := s.Container.MappedPort(ctx, pgTestContainerPort)
	s.Require().NoErrorf(err, "failed to get Container port")

	s.Config = config.Default()
	s.Config.Database.Host = host
	s.Config.Database.Port = port.Int()
	s.Config.Database.User = testContainerUser
	s.Config.Database.Password = testContainerPassword
	s.Config.Database.DBName = testContainerDatabase
	s.Config.Database.Schema = TestSchema
	s.Config.Paths.CSVDir = FixtureDir()
	s.Config.Paths.ChartsDir = s.T().TempDir()

	s.DB, err = sql.Open("postgres", s.Config.Database.GetConnectionString())
	s.Require().NoErrorf(err, "failed to open connection")
	s.DB.SetMaxOpenConns(1)
	s.Require().NoError(s.DB.PingContext(ctx))
}

func (s *PgContainerSuite) TearDownSuite() {
	ctx := context.Background()
	if s.DB != nil {
		s.Assert().NoError(s.DB.Close())
	}
	err := s.Container.Terminate(ctx)
	s.Assert().NoErrorf(err, "failed to terminate PostgreSQL Container")
}

// FixtureDir каталог с небольшим набором CSV Adventure Works
func FixtureDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata")
}

// fixtureFiles копирует testdata в контейнер для загрузки COPY FROM файла сервером
func fixtureFiles() ([]testcontainers.ContainerFile, error) {
	entries, err := os.ReadDir(FixtureDir())
	if err != nil {
		return nil, err
	}
	var files []testcontainers.ContainerFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      filepath.Join(FixtureDir(), e.Name()),
			ContainerFilePath: path.Join(ServerFixtureDir, e.Name()),
			FileMode:          0o644,
		})
	}
	return files, nil
}
