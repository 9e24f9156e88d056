// Command dcpu16vm drives the dcpu16vm/cpu machine from the command
// line: load a memory image, run it for some number of cycles or
// instructions, and inspect the resulting state.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/markcol/dcpu16vm/cpu"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dcpu16vm",
		Short: "dcpu16vm — a cycle-accurate DCPU-16 machine",
	}

	root.AddCommand(newRunCmd(), newStepCmd(), newDumpCmd())
	return root
}

// newRunCmd builds the "run" subcommand: load an image and run it to
// completion (detecting a stuck single-instruction loop) or for a fixed
// cycle budget.
func newRunCmd() *cobra.Command {
	var cycles int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run [image]",
		Short: "Load a memory image and run it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := cpu.New()
			words, err := loadImage(args[0])
			if err != nil {
				return fmt.Errorf("loading image: %w", err)
			}
			m.Load(0, words)

			var total uint64
			if cycles > 0 {
				m.StepCycles(cycles)
				total = m.Cycles()
			} else {
				total = m.StepUntilStuck()
			}

			fmt.Printf("ran %d cycles\n", total)
			if verbose {
				dumpState(m)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cycles, "cycles", 0, "Run exactly this many cycles (0 = run until stuck)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", true, "Dump machine state when finished")
	return cmd
}

// newStepCmd builds the "step" subcommand: single-step instruction by
// instruction, printing state after each one.
func newStepCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "step [image]",
		Short: "Load a memory image and single-step it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := cpu.New()
			words, err := loadImage(args[0])
			if err != nil {
				return fmt.Errorf("loading image: %w", err)
			}
			m.Load(0, words)

			for i := 0; i < count; i++ {
				elapsed := m.StepInstruction()
				fmt.Printf("-- instruction %d (%d cycles) --\n", i+1, elapsed)
				dumpState(m)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of instructions to step")
	return cmd
}

// newDumpCmd builds the "dump" subcommand: load an image and print its
// contents without running anything.
func newDumpCmd() *cobra.Command {
	var words int

	cmd := &cobra.Command{
		Use:   "dump [image]",
		Short: "Load a memory image and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := cpu.New()
			img, err := loadImage(args[0])
			if err != nil {
				return fmt.Errorf("loading image: %w", err)
			}
			m.Load(0, img)
			fmt.Println(spew.Sdump(m.Memory.Snapshot(0, words)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&words, "words", "n", 64, "Number of words to dump starting at address 0")
	return cmd
}

// dumpState prints a human-readable line with PC, SP, O and the skip
// flag, followed by a go-spew dump of the eight general registers.
func dumpState(m *cpu.Machine) {
	regs := make(map[string]uint16, 8)
	for r := cpu.A; r <= cpu.J; r++ {
		regs[cpu.RegisterName(r)] = m.GetRegister(r)
	}
	fmt.Printf("pc=0x%04x sp=0x%04x o=0x%04x skip=%v\n", m.GetPC(), m.GetSP(), m.GetO(), m.Skip())
	fmt.Println(spew.Sdump(regs))
}

// loadImage reads a memory image as whitespace-separated 16-bit words,
// each written in hex with or without a leading 0x; there is no decimal
// form, so "10" is read as 0x10. This
// repo has no assembler (that's explicitly out of scope); images are
// produced by some external tool and handed to it as raw words.
func loadImage(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []uint16
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tok := strings.TrimPrefix(scanner.Text(), "0x")
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing word %q: %w", scanner.Text(), err)
		}
		words = append(words, uint16(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
