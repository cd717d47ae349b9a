/*
 read.go

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
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var readToFile string

var readCmd = &cobra.Command{
	Use:   "read <sector>",
	Short: "Read one sector's worth of data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sector, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid sector %q: %w", args[0], err)
		}

		data := make([]byte, jrn.PageSize())
		if err := m.Read(uint32(sector), data); err != nil {
			return fmt.Errorf("reading sector %d: %w", sector, err)
		}

		if readToFile != "" {
			if err := os.WriteFile(readToFile, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", readToFile, err)
			}
			fmt.Printf("read sector %d into %s\n", sector, readToFile)
			return nil
		}

		fmt.Printf("%x\n", data)
		return nil
	},
}

func init() {
	readCmd.Flags().StringVar(&readToFile, "to", "", "file to write page data to (default: hex to stdout)")
	rootCmd.AddCommand(readCmd)
}
