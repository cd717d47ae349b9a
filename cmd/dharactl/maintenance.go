/*
 maintenance.go

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

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var trimCmd = &cobra.Command{
	Use:   "trim <sector>",
	Short: "Delete one sector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sector, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid sector %q: %w", args[0], err)
		}
		if err := m.Trim(uint32(sector)); err != nil {
			return fmt.Errorf("trimming sector %d: %w", sector, err)
		}
		fmt.Printf("trimmed sector %d\n", sector)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flush every pending write to the checkpointed journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		if err := m.Sync(); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		fmt.Printf("sync ok, cost %.3fs\n", time.Since(start).Seconds())
		return nil
	},
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Run one garbage-collection step",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := m.GC(); err != nil {
			return fmt.Errorf("gc: %w", err)
		}
		fmt.Printf("gc step ok, %d/%d sectors live, %d/%d journal pages used\n",
			m.Size(), m.Capacity(), jrn.Size(), jrn.Capacity())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(gcCmd)
}
