package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Addr     string   `koanf:"addr"`
	Frontend Frontend `koanf:"frontend"`
	Google   Google   `koanf:"google"`
	Auth     Auth     `koanf:"auth"`
	Database Database `koanf:"db"`
	Budget   Budget   `koanf:"budget"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Auth struct {
	// AllowHeaderAuth accepts the X-User-Id header instead of a session cookie.
	// Meant for local development only.
	AllowHeaderAuth bool `koanf:"allowheaderauth"`
}

type Database struct {
	// Path is the location of the SQLite database file.
	Path string `koanf:"path"`
}

type Budget struct {
	// DefaultMonthly is used when a user has not set their own monthly budget yet.
	DefaultMonthly string `koanf:"defaultmonthly"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Addr: ":8191",
		Frontend: Frontend{
			Enabled: true,
		},
		Database: Database{
			Path: "./persely.db",
		},
		Budget: Budget{
			DefaultMonthly: "500000",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "PERSELY_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "PERSELY_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
