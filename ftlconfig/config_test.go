/*
 config_test.go

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

package ftlconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, uint(9), cfg.Log2PageSize)
	require.Equal(t, uint(3), cfg.Log2PPB)
	require.Equal(t, 113, cfg.NumBlocks)
	require.Equal(t, 132, cfg.MetaSize)
	require.Equal(t, 4, cfg.CookieSize)
	require.Equal(t, 8, cfg.MaxRetries)
	require.Equal(t, 4, cfg.GCRatio)
	require.Equal(t, "dhara.img", cfg.DevicePath)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DHARA_NUM_BLOCKS", "256")
	t.Setenv("DHARA_DEVICE_PATH", "/tmp/custom.img")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 256, cfg.NumBlocks)
	require.Equal(t, "/tmp/custom.img", cfg.DevicePath)
}
