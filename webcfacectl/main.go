package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"golang.org/x/term"

	"github.com/webcface/webcface-go/webcface"
)

const WebcfaceCtlVersion = "0.1.0"

const syncInterval = 100 * time.Millisecond

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Webcface control.

The default server is 127.0.0.1:7530. Settings are read from
~/.config/webcface/client.toml when it exists.

Usage:
    webcfacectl send [options] --name=<name> <field> <value>...
    webcfacectl watch [options] <member> [<field>...]
    webcfacectl call [options] <member> <func> [<arg>...]
    webcfacectl serve-func [options] --name=<name> <func>
    webcfacectl shell [options] --name=<name>

Options:
    -h --help                Show this screen.
    --version                Show version.
    --config=<config>        Client config toml.
    --host=<host>            Server host.
    --port=<port>            Server port.
    --name=<name>            Member name of this client.
    --timeout=<timeout>      Seconds to wait for the server [default: 10].
    -v --verbose=<level>     glog verbosity [default: 0].`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], WebcfaceCtlVersion)
	if err != nil {
		panic(err)
	}

	flag.Set("logtostderr", "true")
	if verbose, err := opts.String("--verbose"); err == nil {
		flag.Set("v", verbose)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if send_, _ := opts.Bool("send"); send_ {
		send(ctx, opts)
	} else if watch_, _ := opts.Bool("watch"); watch_ {
		watch(ctx, opts)
	} else if call_, _ := opts.Bool("call"); call_ {
		call(ctx, opts)
	} else if serveFunc_, _ := opts.Bool("serve-func"); serveFunc_ {
		serveFunc(ctx, opts)
	} else if shell_, _ := opts.Bool("shell"); shell_ {
		shell(ctx, opts)
	}
}

func newClient(ctx context.Context, opts docopt.Opts) *webcface.Client {
	configPath, _ := opts.String("--config")
	config, err := webcface.LoadClientConfig(configPath)
	if err != nil {
		Err.Fatalf("Invalid config (%s).", err)
	}
	if name, err := opts.String("--name"); err == nil {
		config.Name = name
	}
	if host, err := opts.String("--host"); err == nil {
		config.Host = host
	}
	if port, err := opts.Int("--port"); err == nil {
		config.Port = port
	}
	return webcface.NewClientWithConfig(ctx, config)
}

func waitConnection(ctx context.Context, opts docopt.Opts, client *webcface.Client) {
	timeout := 10 * time.Second
	if seconds, err := opts.Int("--timeout"); err == nil {
		timeout = time.Duration(seconds) * time.Second
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, timeout)
	defer waitCancel()
	if err := client.WaitConnection(waitCtx); err != nil {
		Err.Fatalf("Could not connect (%s).", err)
	}
}

// syncs until the context is done
func syncLoop(ctx context.Context, client *webcface.Client) {
	for {
		client.Sync()
		select {
		case <-ctx.Done():
			return
		case <-time.After(syncInterval):
		}
	}
}

// publishes one value or text and exits.
// numbers are sent as a value, anything else as a text.
func send(ctx context.Context, opts docopt.Opts) {
	client := newClient(ctx, opts)
	defer client.Close()

	field, _ := opts.String("<field>")
	values := opts["<value>"].([]string)

	numbers := make([]float64, 0, len(values))
	for _, value := range values {
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			break
		}
		numbers = append(numbers, number)
	}
	if len(numbers) == len(values) {
		err := client.Value(field).SetVec(numbers)
		if err != nil {
			Err.Fatalf("Could not set the value (%s).", err)
		}
	} else {
		err := client.Text(field).Set(strings.Join(values, " "))
		if err != nil {
			Err.Fatalf("Could not set the text (%s).", err)
		}
	}

	waitConnection(ctx, opts, client)
	client.Sync()
	Out.Printf("Sent %s.%s.\n", client.Name(), field)
}

// prints values and texts of a member as they change
func watch(ctx context.Context, opts docopt.Opts) {
	client := newClient(ctx, opts)
	defer client.Close()

	memberName, _ := opts.String("<member>")
	fields := opts["<field>"].([]string)
	member := client.Member(memberName)

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && 0 < w {
		width = w
	}
	printLine := func(line string) {
		if width < len(line) {
			line = line[:width-1] + "~"
		}
		Out.Println(line)
	}

	watchValue := func(v webcface.Value) {
		v.OnChange(func(v webcface.Value) {
			printLine(fmt.Sprintf("%s.%s = %v", memberName, v.Name(), v.GetVec()))
		})
	}
	watchText := func(v webcface.Text) {
		v.OnChange(func(v webcface.Text) {
			printLine(fmt.Sprintf("%s.%s = %q", memberName, v.Name(), v.Get()))
		})
	}

	if 0 < len(fields) {
		for _, field := range fields {
			watchValue(member.Value(field))
			watchText(member.Text(field))
		}
	} else {
		member.OnValueEntry(watchValue)
		member.OnTextEntry(watchText)
	}
	member.OnSync(func(m webcface.Member) {
		webcface.LogFn(webcface.LogLevelTrace, "watch")("%s synced at %s", m.Name(), m.SyncTime())
	})
	client.OnMemberEntry(func(m webcface.Member) {
		if m.Name() == memberName {
			printLine(fmt.Sprintf("%s joined (%s %s)", m.Name(), m.LibName(), m.LibVersion()))
		}
	})

	waitConnection(ctx, opts, client)
	syncLoop(ctx, client)
}

// calls a func of a member and prints the result
func call(ctx context.Context, opts docopt.Opts) {
	client := newClient(ctx, opts)
	defer client.Close()

	memberName, _ := opts.String("<member>")
	funcName, _ := opts.String("<func>")
	argStrs := opts["<arg>"].([]string)
	args := make([]any, len(argStrs))
	for i, arg := range argStrs {
		args[i] = arg
	}

	waitConnection(ctx, opts, client)

	f := client.Member(memberName).Func(funcName)
	// the first sync announces this client so the call can be routed
	syncCtx, syncCancel := context.WithCancel(ctx)
	defer syncCancel()
	go syncLoop(syncCtx, client)
	for !f.Exists() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(syncInterval):
		}
	}

	result, err := f.Run(ctx, args...)
	if err != nil {
		Err.Printf("Call failed (%s).", err)
		os.Exit(1)
	}
	Out.Printf("%s\n", result.String())
}

// serves a func that echoes its arguments until interrupted
func serveFunc(ctx context.Context, opts docopt.Opts) {
	client := newClient(ctx, opts)
	defer client.Close()

	funcName, _ := opts.String("<func>")
	logFn := webcface.LogFn(webcface.LogLevelConnect, "serve-func")

	err := client.Func(funcName).Set(func(callHandle *webcface.CallHandle) {
		parts := []string{}
		for _, arg := range callHandle.Args() {
			parts = append(parts, arg.String())
		}
		logFn("call %s(%s)", funcName, strings.Join(parts, ", "))
		callHandle.Respond(strings.Join(parts, " "))
	}, webcface.WithReturnType(webcface.ValTypeString))
	if err != nil {
		Err.Fatalf("Could not set the func (%s).", err)
	}

	waitConnection(ctx, opts, client)
	Out.Printf("Serving %s.%s.\n", client.Name(), funcName)
	syncLoop(ctx, client)
}
