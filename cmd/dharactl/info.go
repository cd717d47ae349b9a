/*
 info.go

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

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show map and journal occupancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("== DEVICE ==\n")
		fmt.Printf("geometry: log2_page_size=%d log2_ppb=%d num_blocks=%d\n",
			cfg.Log2PageSize, cfg.Log2PPB, cfg.NumBlocks)
		fmt.Printf("\n== MAP ==\n")
		fmt.Printf("sectors: %d/%d\n", m.Size(), m.Capacity())
		fmt.Printf("\n== JOURNAL ==\n")
		fmt.Printf("pages:   %d/%d\n", jrn.Size(), jrn.Capacity())
		fmt.Printf("root:    %#x\n", uint32(jrn.Root()))
		fmt.Printf("clean:   %v\n", jrn.IsClean())
		if sim != nil {
			fmt.Printf("\n")
			sim.Dump(cmd.OutOrStdout())
		}
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Report the outcome of scanning the device for prior state",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("resumed: %d sectors mapped, %d journal pages in use\n", m.Size(), jrn.Size())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(resumeCmd)
}
