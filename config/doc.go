// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides layered configuration management.
//
// Configuration is read from one or more Sources, e.g. YAML, JSON,
// environment variables or a .env file. Each Source applies its key
// value pairs to a shared Store and subsequent sources override
// previous ones. The merged result is then decoded into a struct
// using the "config" struct tag.
//
//	m, err := config.Read(
//		config.FromYaml(config.RenderTextTemplate(
//			config.NewFileReader(os.DirFS("."), "config.yaml"),
//			config.TemplateFunc("env", os.Getenv),
//		)),
//		config.FromEnv(config.EnvPrefix("USERFORM")),
//	)
//	if err != nil {
//		return err
//	}
//
//	var cfg Config
//	err = m.Unmarshal(&cfg)
package config
