/*
 write.go

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
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var writeFromFile string

var writeCmd = &cobra.Command{
	Use:   "write <sector> [data-file]",
	Short: "Write one sector's worth of data",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sector, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid sector %q: %w", args[0], err)
		}

		data := make([]byte, jrn.PageSize())

		src := writeFromFile
		if len(args) == 2 {
			src = args[1]
		}
		if src != "" {
			f, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("opening %s: %w", src, err)
			}
			defer f.Close()
			if _, err := io.ReadFull(f, data); err != nil && err != io.ErrUnexpectedEOF {
				return fmt.Errorf("reading %s: %w", src, err)
			}
		}

		if err := m.Write(uint32(sector), data); err != nil {
			return fmt.Errorf("writing sector %d: %w", sector, err)
		}

		fmt.Printf("wrote sector %d (%d bytes)\n", sector, len(data))
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeFromFile, "from", "", "file to read page data from (default: zero-filled)")
	rootCmd.AddCommand(writeCmd)
}
