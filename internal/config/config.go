package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config описывает настройки процесса. Значения читаются из yaml-файла
// и перекрываются переменными окружения.
type Config struct {
	Env        string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTPPort   string        `yaml:"http_port" env:"API_PORT" env-default:"8080"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"12h"`
	BotToken   string        `yaml:"bot_token" env:"BOT_TOKEN"`
	DB         DBConfig      `yaml:"db"`
}

// DBConfig описывает параметры подключения к PostgreSQL.
type DBConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASS"`
	Name     string `yaml:"name" env:"DB_NAME"`
}

// DSN собирает строку подключения к базе данных.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// MustLoad читает конфигурацию и аварийно завершает процесс при ошибке.
func MustLoad() *Config {
	var cfg Config
	path := fetchConfigPath()
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			panic("файл конфигурации не найден: " + path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			panic("не удалось прочитать конфигурацию: " + err.Error())
		}
		return &cfg
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("не удалось прочитать конфигурацию из окружения: " + err.Error())
	}
	return &cfg
}

// fetchConfigPath получает путь до файла конфигурации
// из флага -config или переменной CONFIG_PATH (флаг приоритетнее).
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
