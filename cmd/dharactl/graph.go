/*
 graph.go

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

	"github.com/spf13/cobra"
)

const graphWidth = 64

// occupancy reports, for block b, the fraction of its pages that are
// programmed (not free); a bad block reports 1, as if fully programmed.
func occupancy(b int) float32 {
	if driver.IsBad(b) {
		return 1
	}
	pagesPerBlock := 1 << cfg.Log2PPB
	free := 0
	for p := b * pagesPerBlock; p < (b+1)*pagesPerBlock; p++ {
		if driver.IsFree(p) {
			free++
		}
	}
	return 1 - float32(free)/float32(pagesPerBlock)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Draw a block-occupancy heatmap of the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		for b := 0; b < cfg.NumBlocks; b++ {
			if driver.IsBad(b) {
				fmt.Print("\033[31m█\033[0m")
			} else {
				v := occupancy(b)
				switch {
				case v < 0.0001:
					fmt.Print("█")
				case v < 0.2:
					fmt.Print("\033[92m█\033[0m")
				case v < 0.6:
					fmt.Print("\033[38;5;226m█\033[0m")
				case v < 0.85:
					fmt.Print("\033[38;5;214m█\033[0m")
				default:
					fmt.Print("\033[33m█\033[0m")
				}
			}
			if (b+1)%graphWidth == 0 {
				fmt.Println()
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
