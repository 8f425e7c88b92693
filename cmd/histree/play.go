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

package main

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/histree/histree/log"
	"github.com/histree/histree/snapshot"
	"github.com/histree/histree/sokoban"
	"github.com/histree/histree/storage"
	"github.com/histree/histree/tree"
)

func newPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [levelfile]",
		Short: "Play a Sokoban level, keeping the full move history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, layout := "builtin", sokoban.DefaultLevel
			if len(args) == 1 {
				data, err := ioutil.ReadFile(args[0])
				if err != nil {
					return err
				}
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				layout = string(data)
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			p, err := newPlayer(name, layout, store)
			if err != nil {
				return err
			}
			return p.run(os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().Int("prune-limit", 4, "delete a cycle's positions when it returns to a state at most this many moves back")
	cmd.Flags().String("grafting", "graft", "grafting mode: nograft, graft, copypath or graftandcopy")
	_ = viper.BindPFlag("prune_limit", cmd.Flags().Lookup("prune-limit"))
	_ = viper.BindPFlag("grafting", cmd.Flags().Lookup("grafting"))
	return cmd
}

func graftingMode(name string) (tree.Grafting, error) {
	switch name {
	case "nograft":
		return tree.NoGraft, nil
	case "graft":
		return tree.Graft, nil
	case "copypath":
		return tree.CopyPath, nil
	case "graftandcopy":
		return tree.GraftAndCopy, nil
	}
	return tree.Graft, fmt.Errorf("unknown grafting mode %q", name)
}

// player glues a game, its history session and the session store
// together for one interactive run.
type player struct {
	name       string
	game       *sokoban.Game
	scratch    *sokoban.Game
	session    *tree.Session
	cur        *tree.Position
	store      storage.Store
	pruneLimit int
	best       int // size of the best solution seen so far
}

func newPlayer(name, layout string, store storage.Store) (*player, error) {
	game, err := sokoban.New(layout)
	if err != nil {
		return nil, err
	}
	grafting, err := graftingMode(viper.GetString("grafting"))
	if err != nil {
		return nil, err
	}

	p := &player{
		name:       name,
		game:       game,
		scratch:    game.Copy(),
		store:      store,
		pruneLimit: viper.GetInt("prune_limit"),
	}

	// The transition function used to regenerate states when loading a
	// saved session.
	apply := func(state []byte, move int) ([]byte, error) {
		if len(state) != p.scratch.StateSize() {
			return nil, fmt.Errorf("saved session does not fit this level")
		}
		p.scratch.SetState(state)
		if !p.scratch.Apply(move) {
			return nil, fmt.Errorf("saved session contains illegal %s", sokoban.MoveName(move))
		}
		return p.scratch.State(), nil
	}

	if kv, err := store.Get(sessionKey(name)); err == nil {
		p.session, err = snapshot.Restore(kv.Value, apply, tree.WithGrafting(grafting))
		if err != nil {
			return nil, err
		}
		log.Infof("restored session %q with %d positions", name, p.session.Size())
	} else if err == storage.ErrKeyNotFound {
		p.session, err = tree.NewSession(game.State(), 0, tree.WithGrafting(grafting))
		if err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}

	p.cur = p.session.Root()
	p.game.SetState(p.cur.State())
	p.best = p.session.Root().SolutionSize()
	return p, nil
}

// goTo makes pos the current position and loads its state on the board.
func (p *player) goTo(pos *tree.Position) {
	if pos == nil {
		return
	}
	p.cur = pos
	p.game.SetState(pos.State())
}

// move executes a game move. A move already in the history just follows
// its branch. A new legal move is checked for cycles first; only a
// genuinely new state grows the tree.
func (p *player) move(move int) {
	if pos := p.cur.Next(move); pos != nil {
		p.goTo(pos)
		return
	}
	if p.game.Solved() {
		return
	}
	p.scratch.SetState(p.cur.State())
	if !p.scratch.Apply(move) {
		return
	}
	state := p.scratch.State()
	endpoint := 0
	if p.scratch.Solved() {
		endpoint = 1
	}
	if pos, found := p.session.SuppressCycle(p.cur, state, p.pruneLimit); found {
		p.goTo(pos)
		return
	}
	p.goTo(p.session.AddPosition(p.cur, move, state, endpoint, tree.Check))
	if size := p.cur.SolutionSize(); size != 0 && (p.best == 0 || size < p.best) {
		p.best = size
	}
}

// jumpForward follows the history to a leaf, preferring the branch that
// carries the best known solution.
func (p *player) jumpForward() *tree.Position {
	pos := p.cur
	for pos.FirstBranch() != nil {
		if pos.SolutionSize() == 0 {
			pos = pos.FirstBranch().Target()
			continue
		}
		for b := pos.FirstBranch(); b != nil; b = b.Sibling() {
			if b.Target().SolutionSize() == pos.SolutionSize() {
				pos = pos.Next(b.Move())
				break
			}
		}
	}
	return pos
}

func (p *player) save() error {
	if !p.session.Changed() {
		return nil
	}
	data, err := snapshot.Take(p.session)
	if err != nil {
		return err
	}
	err = p.store.Mutate([]*storage.Mutation{
		storage.NewMutation(sessionKey(p.name), data),
	})
	if err != nil {
		return err
	}
	p.session.ClearChanged()
	log.Infof("saved session %q with %d positions", p.name, p.session.Size())
	return nil
}

func (p *player) render(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprint(w, p.game.Render())
	fmt.Fprintf(w, "moves: %d", p.cur.MoveCount())
	if better := p.cur.Better(); better != nil {
		fmt.Fprintf(w, "  (seen in %d)", better.MoveCount())
	}
	fmt.Fprintf(w, "  stored: %d/%d", p.game.Stored(), p.game.Boxes())
	if p.best != 0 {
		fmt.Fprintf(w, "  best solution: %d", p.best)
	}
	if p.game.Solved() {
		fmt.Fprint(w, "  * SOLVED *")
	}
	fmt.Fprintln(w)
	for b := p.cur.FirstBranch(); b != nil; b = b.Sibling() {
		fmt.Fprintf(w, "  redo %-5s", sokoban.MoveName(b.Move()))
		if size := b.Target().SolutionSize(); size != 0 {
			fmt.Fprintf(w, " -> solution in %d", size)
		}
		fmt.Fprintln(w)
	}
}

const playHelp = `  h j k l   move left, down, up, right
  -         undo         +  redo
  <         undo x10     >  redo x10
  [         undo to previous branch point
  ]         redo to next branch point
  ^         return to the start
  $         redo all the way to the best solution
  x         undo and delete the last move
  b         jump to the shorter route to this state
  c         copy the moves of the shorter route here
  ?         help
  q         quit (saves the session)
`

// run reads commands line by line; every character on a line is one
// command.
func (p *player) run(in io.Reader, out io.Writer) error {
	p.render(out)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		quit := false
		for _, ch := range scanner.Text() {
			if p.docmd(ch, out) {
				quit = true
				break
			}
		}
		if quit {
			break
		}
		p.render(out)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return p.save()
}

// docmd executes one command character. It reports whether the player
// asked to quit.
func (p *player) docmd(ch rune, out io.Writer) bool {
	switch ch {
	case 'h':
		p.move(sokoban.MoveLeft)
	case 'j':
		p.move(sokoban.MoveDown)
	case 'k':
		p.move(sokoban.MoveUp)
	case 'l':
		p.move(sokoban.MoveRight)
	case '-':
		p.goTo(p.cur.Prev())
	case '+', '=':
		if b := p.cur.FirstBranch(); b != nil {
			p.goTo(b.Target())
		}
	case '<':
		pos := p.cur
		for i := 0; i < 10 && pos.Prev() != nil; i++ {
			pos = pos.Prev()
		}
		p.goTo(pos)
	case '>':
		pos := p.cur
		for i := 0; i < 10 && pos.FirstBranch() != nil; i++ {
			pos = pos.FirstBranch().Target()
		}
		p.goTo(pos)
	case '[':
		pos := p.cur
		for pos.Prev() != nil {
			pos = pos.Prev()
			if pos.NextCount() > 1 {
				break
			}
		}
		p.goTo(pos)
	case ']':
		pos := p.cur
		for pos.FirstBranch() != nil {
			pos = pos.FirstBranch().Target()
			if pos.NextCount() > 1 {
				break
			}
		}
		p.goTo(pos)
	case '^':
		p.goTo(p.session.Root())
	case '$':
		p.goTo(p.jumpForward())
	case 'x':
		if pos := p.session.DropPosition(p.cur); pos != p.cur {
			p.goTo(pos)
		} else {
			fmt.Fprintln(out, "cannot delete this position")
		}
	case 'b':
		pos := p.cur
		for pos.Better() != nil {
			pos = pos.Better()
		}
		p.goTo(pos)
	case 'c':
		if p.cur.Better() != nil {
			p.session.DuplicatePath(p.cur, p.cur.Better())
		}
	case '?':
		fmt.Fprint(out, playHelp)
	case 'q':
		return true
	}
	return false
}
