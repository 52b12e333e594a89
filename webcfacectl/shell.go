package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-shellwords"

	"github.com/webcface/webcface-go/webcface"
)

const shellUsage = `Webcface shell.

Usage:
    webcface set <field> <value>...
    webcface get <member> <field>
    webcface call <member> <func> [<arg>...]
    webcface members
    webcface exit

Options:
    -h --help    Show this screen.`

// an interactive session that keeps one client connected
func shell(ctx context.Context, opts docopt.Opts) {
	client := newClient(ctx, opts)
	defer client.Close()

	waitConnection(ctx, opts, client)
	go syncLoop(ctx, client)

	parser := &docopt.Parser{
		HelpHandler: func(err error, usage string) {
			if err == nil {
				fmt.Println(usage)
			} else {
				Err.Printf("Invalid command or arguments. Use '--help' for usage.")
			}
		},
	}

	logFn := webcface.SubLogFn(webcface.LogFn(webcface.LogLevelConnect, "webcfacectl"), "shell")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")

		input, err := reader.ReadString('\n')
		if err == io.EOF {
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// enables quotation marks
		args, err := shellwords.Parse(input)
		if err != nil {
			parser.HelpHandler(err, shellUsage)
			continue
		}

		shellOpts, err := parser.ParseArgs(shellUsage, args, WebcfaceCtlVersion)
		if err != nil {
			continue
		}

		logFn("%v", args)

		if set_, _ := shellOpts.Bool("set"); set_ {
			shellSet(client, shellOpts)
		} else if get_, _ := shellOpts.Bool("get"); get_ {
			shellGet(ctx, client, shellOpts)
		} else if call_, _ := shellOpts.Bool("call"); call_ {
			shellCall(ctx, client, shellOpts)
		} else if members_, _ := shellOpts.Bool("members"); members_ {
			for _, member := range client.Members() {
				Out.Printf("%s %s %s\n", member.Name(), member.LibName(), member.LibVersion())
			}
		} else if exit_, _ := shellOpts.Bool("exit"); exit_ {
			return
		}
	}
}

func shellSet(client *webcface.Client, opts docopt.Opts) {
	field, _ := opts.String("<field>")
	values := opts["<value>"].([]string)
	if number, err := strconv.ParseFloat(values[0], 64); err == nil && len(values) == 1 {
		if err := client.Value(field).Set(number); err != nil {
			Err.Printf("%s", err)
		}
		return
	}
	if err := client.Text(field).Set(strings.Join(values, " ")); err != nil {
		Err.Printf("%s", err)
	}
}

// prints the value or text of the field once it arrives
func shellGet(ctx context.Context, client *webcface.Client, opts docopt.Opts) {
	memberName, _ := opts.String("<member>")
	field, _ := opts.String("<field>")
	member := client.Member(memberName)

	done := make(chan string, 1)
	report := func(line string) {
		select {
		case done <- line:
		default:
		}
	}
	unsubscribeValue := member.Value(field).OnChange(func(v webcface.Value) {
		report(fmt.Sprintf("%v", v.GetVec()))
	})
	defer unsubscribeValue()
	unsubscribeText := member.Text(field).OnChange(func(v webcface.Text) {
		report(fmt.Sprintf("%q", v.Get()))
	})
	defer unsubscribeText()

	if v, ok := member.Value(field).TryGetVec(); ok {
		report(fmt.Sprintf("%v", v))
	} else if v, ok := member.Text(field).TryGet(); ok {
		report(fmt.Sprintf("%q", v))
	}

	select {
	case <-ctx.Done():
	case line := <-done:
		Out.Println(line)
	}
}

func shellCall(ctx context.Context, client *webcface.Client, opts docopt.Opts) {
	memberName, _ := opts.String("<member>")
	funcName, _ := opts.String("<func>")
	argStrs := opts["<arg>"].([]string)
	args := make([]any, len(argStrs))
	for i, arg := range argStrs {
		args[i] = arg
	}

	result, err := client.Member(memberName).Func(funcName).Run(ctx, args...)
	if err != nil {
		Err.Printf("Call failed (%s).", err)
		return
	}
	Out.Println(result.String())
}
