/*
 fill.go

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
	"math/rand"

	"github.com/spf13/cobra"
)

var fillCount int

// fillCmd writes fillCount sectors of random data at random sector
// numbers, for exercising GC and recovery under load without staging real
// files first.
var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Write randomly-addressed sectors of random data for load testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		data := make([]byte, jrn.PageSize())
		for i := 0; i < fillCount; i++ {
			sector := uint32(rand.Intn(1 << 20))
			rand.Read(data)
			if err := m.Write(sector, data); err != nil {
				return fmt.Errorf("writing sector %d (%d/%d): %w", sector, i+1, fillCount, err)
			}
		}
		fmt.Printf("wrote %d sectors\n", fillCount)
		return nil
	},
}

func init() {
	fillCmd.Flags().IntVarP(&fillCount, "count", "n", 100, "number of sectors to write")
	rootCmd.AddCommand(fillCmd)
}
