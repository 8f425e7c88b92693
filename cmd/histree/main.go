/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// histree is a terminal Sokoban player demonstrating the branching
// history engine: every move ever made stays available for redo, equal
// states reached by different routes are linked, and solutions migrate
// to the shortest known route.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/histree/histree/log"
	"github.com/histree/histree/storage"
	"github.com/histree/histree/storage/badger"
	"github.com/histree/histree/storage/bolt"
	"github.com/histree/histree/storage/bplus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histree",
		Short: "histree is a Sokoban player with a branching move history",
		Long: `histree plays Sokoban levels in the terminal. Unlike a plain
undo/redo, every line of play ever tried is kept in a tree: undone
moves stay redoable, equal states reached by different routes are
detected, and known solutions transfer to shorter routes as soon as
they are discovered.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLogger("histree", viper.GetString("log"))
		},
	}

	defaultDir := "."
	if home, err := homedir.Dir(); err == nil {
		defaultDir = filepath.Join(home, ".histree")
	}

	flags := cmd.PersistentFlags()
	flags.String("data-dir", defaultDir, "directory for saved sessions")
	flags.String("store", "bolt", "session store backend: bolt, badger or memory")
	flags.String("log", "error", "log level: silent, error, info or debug")
	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("store", flags.Lookup("store"))
	_ = viper.BindPFlag("log", flags.Lookup("log"))
	viper.SetEnvPrefix("histree")
	viper.AutomaticEnv()

	cmd.AddCommand(newPlayCommand())
	cmd.AddCommand(newResetCommand())
	return cmd
}

// openStore opens the configured session store, creating the data
// directory on demand.
func openStore() (storage.Store, error) {
	dir := viper.GetString("data_dir")
	backend := viper.GetString("store")
	if backend == "memory" {
		return bplus.NewBPlusTreeStore(), nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	switch backend {
	case "bolt":
		return bolt.NewBoltStore(filepath.Join(dir, "sessions.db"))
	case "badger":
		return badger.NewBadgerStore(filepath.Join(dir, "sessions"))
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

func sessionKey(level string) []byte {
	return []byte("session:" + level)
}
