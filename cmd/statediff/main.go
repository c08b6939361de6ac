package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ergochat/readline"

	"github.com/clustermesh/statediff"
	"github.com/clustermesh/statediff/replica"
	"github.com/clustermesh/statediff/store"
	"github.com/clustermesh/statediff/utils"
	"github.com/clustermesh/statediff/wire"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("set"),
	readline.PcItem("del"),
	readline.PcItem("show"),
	readline.PcItem("diff"),
	readline.PcItem("commit"),
	readline.PcItem("apply"),
	readline.PcItem("gen"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

type stringCodec struct {
	statediff.OpaqueCodec[string, string]
}

func (stringCodec) AppendValue(into []byte, value string) ([]byte, error) {
	return wire.AppendString(into, value), nil
}

func (stringCodec) ReadValue(r *wire.Reader, key string) (string, error) {
	return r.String()
}

func (stringCodec) Equal(a, b string) bool { return a == b }

const mapName = "playground"

// repl keeps a working copy of one string map; diff shows the delta
// against the committed snapshot and commit ships it through the
// replica path to disk.
type repl struct {
	rep     *replica.Replica
	working map[string]string
	keys    statediff.StringKey
	vals    stringCodec
}

func (re *repl) committed() (map[string]string, uint64, error) {
	return store.Load(re.rep.Store(), mapName, re.keys, re.vals)
}

func (re *repl) show(w io.Writer) {
	names := make([]string, 0, len(re.working))
	for k := range re.working {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", k, re.working[k])
	}
}

func (re *repl) diff(w io.Writer) error {
	base, _, err := re.committed()
	if err != nil {
		return err
	}
	d := statediff.DiffMaps(base, re.working, re.keys, re.vals)
	if d == nil {
		_, _ = fmt.Fprintln(w, "(no changes)")
		return nil
	}
	data, err := d.AppendTo(nil, statediff.VersionCurrent)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "deletes %d  diffs %d  upserts %d, %d bytes\n",
		len(d.Deletes()), len(d.Diffs()), len(d.Upserts()), len(data))
	_, _ = fmt.Fprint(w, hex.Dump(data))
	return nil
}

func (re *repl) commit(ctx context.Context, w io.Writer) error {
	base, gen, err := re.committed()
	if err != nil {
		return err
	}
	d := statediff.DiffMaps(base, re.working, re.keys, re.vals)
	if d == nil {
		_, _ = fmt.Fprintln(w, "(no changes)")
		return nil
	}
	data, err := d.AppendTo(nil, statediff.VersionCurrent)
	if err != nil {
		return err
	}
	err = replica.Ingest(ctx, re.rep, mapName, gen+1, data, re.keys, re.vals)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "committed generation %d, %d bytes\n", gen+1, len(data))
	return nil
}

// apply replays a serialized delta over the working map.
func (re *repl) apply(hexData string) error {
	data, err := hex.DecodeString(hexData)
	if err != nil {
		return err
	}
	d, _, err := statediff.ReadMapDiff(data, re.keys, re.vals)
	if err != nil {
		return err
	}
	re.working = d.Apply(re.working)
	return nil
}

const usage = `set <key> <value>  put a key in the working map
del <key>          remove a key from the working map
show               list the working map
diff               hexdump the delta against the committed snapshot
commit             apply the delta and advance the generation
apply <hex>        replay a serialized delta over the working map
gen                print the committed generation
exit               quit`

func main() {
	dir := "/tmp/statediff-repl"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	log := utils.NewDefaultLogger(slog.LevelWarn)
	st, err := store.Open(dir, log)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
	defer func() { _ = st.Close() }()

	rep, err := replica.New(st, log)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}

	re := repl{rep: rep, working: map[string]string{}}
	if snap, _, err := re.committed(); err == nil {
		re.working = snap
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "Δ ",
		HistoryFile:     "/tmp/statediff-readline.tmp",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	ctx := context.Background()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args := strings.Split(line, " ")
		cmd := args[0]
		args = args[1:]
		err = nil
		switch cmd {
		case "help":
			fmt.Println(usage)
		case "set":
			if len(args) < 2 {
				_, _ = fmt.Fprintln(os.Stderr, "usage: set <key> <value>")
				break
			}
			re.working[args[0]] = strings.Join(args[1:], " ")
		case "del":
			if len(args) != 1 {
				_, _ = fmt.Fprintln(os.Stderr, "usage: del <key>")
				break
			}
			delete(re.working, args[0])
		case "show", "list":
			re.show(os.Stdout)
		case "diff":
			err = re.diff(os.Stdout)
		case "commit":
			err = re.commit(ctx, os.Stdout)
		case "apply":
			if len(args) != 1 {
				_, _ = fmt.Fprintln(os.Stderr, "usage: apply <hex>")
				break
			}
			err = re.apply(args[0])
		case "gen":
			var gen uint64
			gen, err = rep.Generation(mapName)
			if err == nil {
				fmt.Println(gen)
			}
		case "exit", "quit":
			os.Exit(0)
		default:
			_, _ = fmt.Fprintf(os.Stderr, "command unknown: %s\n", cmd)
		}

		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error executing %s: %s\n", cmd, err.Error())
		}
	}
}
