/*
 inject.go

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

var (
	injectBad       int
	injectFailed    int
	injectTimebombs int
	injectMaxTTL    int
)

// injectCmd only makes sense against the simulated device: a file-backed
// one has no fault model to arm.
var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Arm bad-block, permanent-failure or delayed-failure faults on the simulated device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sim == nil {
			return fmt.Errorf("inject requires --sim (the device is file-backed, nothing to arm)")
		}
		if injectBad > 0 {
			sim.InjectBad(injectBad)
			fmt.Printf("injected %d factory-marked bad blocks\n", injectBad)
		}
		if injectFailed > 0 {
			sim.InjectFailed(injectFailed)
			fmt.Printf("injected %d unmarked failed blocks\n", injectFailed)
		}
		if injectTimebombs > 0 {
			sim.InjectTimebombs(injectTimebombs, injectMaxTTL)
			fmt.Printf("armed %d timebombs (max ttl %d)\n", injectTimebombs, injectMaxTTL)
		}
		return nil
	},
}

func init() {
	injectCmd.Flags().IntVar(&injectBad, "bad", 0, "number of factory-marked bad blocks to inject")
	injectCmd.Flags().IntVar(&injectFailed, "failed", 0, "number of unmarked failed blocks to inject")
	injectCmd.Flags().IntVar(&injectTimebombs, "timebombs", 0, "number of delayed-failure blocks to arm")
	injectCmd.Flags().IntVar(&injectMaxTTL, "max-ttl", 10, "maximum operations-until-failure for --timebombs")
	rootCmd.AddCommand(injectCmd)
}
