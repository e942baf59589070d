package mocks

import "github.com/cogestio/espaceclient/internal/config"

func NewMockConfig() *config.Config {
	cfg := &config.Config{
		BaseURL:      "http://localhost",
		DashboardURL: "http://localhost:3000",
		HttpPort:     8080,
		RedisServer:  "localhost:6379",
		KafkaServers: "localhost:9092",
	}

	cfg.Db.Dsn = "mock_dsn"
	cfg.Db.Automigrate = false
	cfg.Jwt.SecretKey = "test_secret"
	cfg.Notifications.Email = ""
	cfg.Smtp.Host = "smtp.example.com"
	cfg.Smtp.Port = 587
	cfg.Smtp.Username = "user@example.com"
	cfg.Smtp.Password = "password"
	cfg.Smtp.From = "no-reply@example.com"

	return cfg
}
