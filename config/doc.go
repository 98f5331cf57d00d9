// Package config loads voxnote configuration from a YAML file, an optional
// .env file and environment variables.
//
// Without explicit paths the loader looks for ./voxnote.yml, ./config.yml,
// ./config/config.yml, ~/.config/voxnote/config.yml and
// ~/.voxnote/config.yml, and for ./.env.voxnote, ./.env and ~/.voxnote/.env.
// Environment variables always win over file values: TRANSCRIPTION_MODEL
// binds to transcription.model, and with WithEnvPrefix("VOXNOTE") so does
// VOXNOTE_TRANSCRIPTION_MODEL.
//
//	var cfg app.Config
//	if err := config.LoadConfig("voxnote", &cfg, config.WithEnvPrefix("VOXNOTE")); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
package config
