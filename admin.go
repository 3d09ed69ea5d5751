// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"github.com/spf13/cobra"

	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/store"
)

func init() {
	rootCmd.AddCommand(migrateCmd, tickCmd, reconcileCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDatabase()
		if err != nil {
			return err
		}
		return dbConn.Close()
	},
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one scheduler pass over every election",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDatabase()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		sched := lifecycle.NewScheduler(store.New(dbConn), lifecycle.Options{})
		report, err := sched.Tick(cmd.Context())
		if err != nil {
			return err
		}

		printf(cmd, "scanned=%d advanced=%d completed=%d failed=%d\n",
			report.Scanned, report.Advanced, report.Completed, report.Failed)
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recount tallies from ballots and repair drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDatabase()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		report, err := store.New(dbConn).Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		printf(cmd, "candidates=%d elections=%d history=%d\n",
			report.Candidates, report.Elections, report.History)
		return nil
	},
}
