// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.


package main

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/retroenv/retrogolib/log"
)

var helpvar bool
var debugvar bool
var outvar string

const usage = "chip8-asm [-debug] [-out outfile] filename"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.c8db'",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
}

func replaceExt(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}

// report prints an assembler error the way compilers do, quoting the source
// line with the offending token underlined.
func report(w io.Writer, prefix string, input io.ReadSeeker, err error) {
	var tokenErr assembler.TokenError

	if !errors.As(err, &tokenErr) {
		fmt.Fprintf(w, "%s %s\n", prefix, err)
		return
	}

	cursor := tokenErr.GetPosition()

	if _, seekErr := input.Seek(cursor.LineByte, io.SeekStart); seekErr != nil {
		fmt.Fprintf(w, "%s %s\n", prefix, err)
		return
	}

	line, _ := bufio.NewReader(input).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")

	column := int(cursor.Byte - cursor.LineByte)
	underline := strings.Repeat(" ", column) + "^" +
		strings.Repeat("~", max(int(cursor.Size)-1, 0))

	fmt.Fprintf(
		w, "%s%d:%d: %s\n%s\n\033[31m%s\033[0m\n",
		prefix, cursor.Line, column+1, err, line, underline,
	)
}

func chip8_asm() int {
	flag.Parse()

	logger := log.NewWithConfig(log.DefaultConfig())

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var infile string
	var prefix string
	var source []byte

	if stat, err := os.Stdin.Stat(); err == nil && len(args) == 0 && stat.Mode()&os.ModeCharDevice == 0 {
		var err error

		if source, err = io.ReadAll(os.Stdin); err != nil {
			logger.Error("Error reading input", log.Err(err))
			return 1
		}

		prefix = "\033[1m<stdin>:\033[0m"

		if outvar == "" {
			outvar = "out.ch8"
		}
	} else {
		if len(args) != 1 {
			logger.Error(usage)
			return 1
		}

		infile = args[0]

		if stat, err := os.Stat(infile); err != nil {
			logger.Error("Error opening input", log.Err(err))
			return 1
		} else if stat.IsDir() {
			logger.Error("Not a valid CHIP-8 assembly file",
				log.String("file", infile))
			return 1
		}

		var err error

		if source, err = os.ReadFile(infile); err != nil {
			logger.Error("Error reading input", log.Err(err))
			return 1
		}

		filename := filepath.Base(infile)
		prefix = fmt.Sprintf("\033[1m%s:\033[0m", filename)

		if outvar == "" {
			outvar = replaceExt(filename, ".ch8")
		}
	}

	var symtable *assembler.SymTable

	if debugvar {
		var path string

		if infile != "" {
			var err error
			if path, err = filepath.Abs(infile); err != nil {
				logger.Error("Unable to resolve source path", log.Err(err))
				path = ""
			}
		}

		symtable = assembler.NewSymTable(path)
	}

	input := bytes.NewReader(source)
	result, errs := assembler.AssembleChip8Source(input, symtable)

	if len(errs) > 0 {
		for _, err := range errs {
			report(os.Stderr, prefix, input, err)
		}

		return 1
	}

	if err := os.WriteFile(outvar, result, 0666); err != nil {
		logger.Error("Error writing output file", log.Err(err))
		return 1
	}

	logger.Debug("Program assembled",
		log.String("file", outvar), log.Int("size", len(result)))

	if symtable != nil {
		filename := replaceExt(outvar, ".c8db")

		file, err := os.Create(filename)

		if err != nil {
			logger.Error("Error creating symbol table", log.Err(err))
			return 1
		}

		defer file.Close()

		if err := gob.NewEncoder(file).Encode(symtable); err != nil {
			logger.Error("Error writing symbol table", log.Err(err))
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(chip8_asm())
}
