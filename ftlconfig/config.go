/*
 config.go

 GNU GENERAL PUBLIC LICENSE
 Version 3, 29 June 2007
 Copyright (C) 2024 Jack Ng <jack.ng.ca@gmail.com>

 This program is free software: you can redistribute it and/or modify
 it under the terms of the GNU General Public License as published by
 the Free Software Foundation, either version 3 of the License, or
 (at your option) any later version.

 This program is distributed in the hope that it will be useful,
 but WITHOUT ANY WARRANTY; without even the implied warranty of
 MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 GNU General Public License for more details.

 You should have received a copy of the GNU General Public License
 along with this program.  If not, see <https://www.gnu.org/licenses/> */

// Package ftlconfig loads device geometry and tunables for dharactl from a
// config file or environment variables, via Viper.
package ftlconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every value a Journal/Map pair needs at construction that
// isn't learned by scanning the device itself.
type Config struct {
	Log2PageSize uint   `mapstructure:"log2_page_size"`
	Log2PPB      uint   `mapstructure:"log2_ppb"`
	NumBlocks    int    `mapstructure:"num_blocks"`
	MetaSize     int    `mapstructure:"meta_size"`
	CookieSize   int    `mapstructure:"cookie_size"`
	MaxRetries   int    `mapstructure:"max_retries"`
	GCRatio      int    `mapstructure:"gc_ratio"`
	DevicePath   string `mapstructure:"device_path"`
}

// Load reads dhara-config.{yaml,json,toml} from the current directory,
// "./config", or "$HOME/.dhara", falling back to the DHARA_ reference
// geometry (log2_page_size=9, log2_ppb=3, num_blocks=113) when no file and
// no environment override is present.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("dhara-config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.dhara")

	v.SetDefault("log2_page_size", 9)
	v.SetDefault("log2_ppb", 3)
	v.SetDefault("num_blocks", 113)
	v.SetDefault("meta_size", 132)
	v.SetDefault("cookie_size", 4)
	v.SetDefault("max_retries", 8)
	v.SetDefault("gc_ratio", 4)
	v.SetDefault("device_path", "dhara.img")

	v.SetEnvPrefix("DHARA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ftlconfig: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ftlconfig: unmarshaling config: %w", err)
	}

	return &cfg, nil
}
