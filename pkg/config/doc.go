// Package config loads the optional scalelist YAML configuration file.
//
// The file lives at ~/.config/scalelist/config.yaml unless --config names
// another path. Every section is optional; missing fields take the defaults
// shown below.
//
//	cache:
//	  backend: file          # file | redis | none
//	  dir: ~/.cache/scalelist
//	  redis_url_env: SCALELIST_REDIS_URL
//	  ttl: 168h
//	  prefix: ""             # e.g. "staging:" to share a backend
//	store:
//	  driver: file           # file | sqlite | postgres | mongo
//	  dsn_env: SCALELIST_STORE_DSN
//	  database: scalelist
//	server:
//	  addr: ":8080"
//	  cors_origins: ["*"]
//	  request_timeout: 30s
//	log:
//	  level: info            # debug | info | warn | error
//
// Connection strings may be given inline (redis_url, dsn) or through the
// environment variable named by the *_env field, which wins when set.
package config
