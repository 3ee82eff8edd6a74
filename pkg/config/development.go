package config

func loadDevelopmentConfig(cfg *Config) {
	cfg.DatabaseDebug = true
	if cfg.DatabaseFilePath == "" {
		cfg.DatabaseFilePath = "./tmp/shelf.sqlite"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret"
	}
	cfg.ServerHost = "127.0.0.1"
	cfg.SessionFilePath = "./tmp/admin_session.json"
	cfg.SettingsFilePath = "./tmp/app_settings.json"
}
