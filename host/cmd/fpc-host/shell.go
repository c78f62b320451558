package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cmdShell = &cobra.Command{
		Use:   "shell",
		Short: "Keep the sensor open and read commands from stdin",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}
)

func init() {
	rootCmd.AddCommand(cmdShell)
}

// resetFlags restores a command's local flags so a previous shell line
// does not leak into the next.
func resetFlags(cmd *cobra.Command) {
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func runShell(cmd *cobra.Command, _ []string) error {
	if shellSession != nil {
		return fmt.Errorf("already in a shell")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	shellSession = s
	defer func() {
		shellSession = nil
		s.Close()
	}()

	fmt.Printf("Connected to %s (%s %s)\n", s.schema.Name, s.schema.Transport, s.schema.Device)
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")

	ctx := cmd.Context()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			return nil
		case "shell":
			fmt.Fprintln(os.Stderr, "Error: already in a shell")
			continue
		}

		if sub, _, err := rootCmd.Find(args); err == nil {
			resetFlags(sub)
		}
		rootCmd.SetArgs(args)
		if err := rootCmd.ExecuteContext(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	return scanner.Err()
}
