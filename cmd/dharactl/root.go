/*
 root.go

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

// Command dharactl is a demonstration and administration tool for driving a
// ftlmap.Map over either a throwaway simulated device or a persistent
// file-backed one.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jaco00/dharafs/ftlconfig"
	"github.com/jaco00/dharafs/ftlmap"
	"github.com/jaco00/dharafs/journal"
	"github.com/jaco00/dharafs/nand"
	"github.com/jaco00/dharafs/nandsim"
)

var (
	useSim     bool
	verboseLog bool

	cfg     *ftlconfig.Config
	driver  nand.Driver
	mmap    *nandsim.MmapDriver
	sim     *nandsim.SimDriver
	session *nandsim.Session
	jrn     *journal.Journal
	m       *ftlmap.Map
)

var rootCmd = &cobra.Command{
	Use:   "dharactl",
	Short: "Drive a flash translation layer map over a simulated or file-backed device",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
		if verboseLog {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.InfoLevel)
		}

		var err error
		cfg, err = ftlconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		session = nandsim.NewSession()

		if useSim {
			sim = nandsim.NewSimDriver(cfg.Log2PageSize, cfg.Log2PPB, cfg.NumBlocks)
			driver = sim
		} else {
			mmap, err = nandsim.OpenMmapDriver(cfg.DevicePath, cfg.Log2PageSize, cfg.Log2PPB, cfg.NumBlocks)
			if err != nil {
				return fmt.Errorf("opening device %s: %w", cfg.DevicePath, err)
			}
			driver = mmap
		}

		jrn, err = journal.New(journal.Config{
			Driver:     driver,
			MetaSize:   cfg.MetaSize,
			CookieSize: cfg.CookieSize,
			MaxRetries: cfg.MaxRetries,
			Cache:      nandsim.NewMetaCache(nandsim.MetaCacheSize),
		})
		if err != nil {
			return fmt.Errorf("initializing journal: %w", err)
		}

		m, err = ftlmap.New(ftlmap.Config{Journal: jrn, GCRatio: cfg.GCRatio})
		if err != nil {
			return fmt.Errorf("initializing map: %w", err)
		}

		if err := m.Resume(); err != nil {
			if nand.KindOf(err) != nand.KindNotFound {
				session.Log().Warnf("resume reported %s, continuing with an empty map", err)
			}
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if mmap != nil {
			if err := m.Sync(); err != nil {
				session.Log().Errorf("sync on exit failed: %s", err)
			}
			return mmap.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&useSim, "sim", true, "use a throwaway in-memory simulated device instead of a file-backed one")
	rootCmd.PersistentFlags().BoolVarP(&verboseLog, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. Any error it returns has already been
// printed by cobra; the caller just needs the exit status.
func Execute() error {
	return rootCmd.Execute()
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
