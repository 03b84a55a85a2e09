package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render text files to PDF")
	fmt.Fprintln(w, "  generate   Ask a language model for content and render it")
	fmt.Fprintln(w, "  serve      Start the HTTP API")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docgen help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render loosely formatted text to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .txt/.text/.md file, directory, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (stdin: default stdout)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	printDocumentUsage(w)
	printPageUsage(w)
	printBackendUsage(w)
	printOutputControlUsage(w)
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen generate --prompt <text> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ask a content provider for a document, then render it to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "  -P, --prompt <s>          What the document should be about (required)")
	fmt.Fprintln(w, "  -s, --source <path>       Source material to build on")
	fmt.Fprintln(w, "      --auto-title          Ask the provider for a title")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF (default: derived from the title)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Provider:")
	fmt.Fprintln(w, "      --provider <s>        gemini, openai, openrouter, anthropic")
	fmt.Fprintln(w, "  -m, --model <s>           Model (default: provider default)")
	fmt.Fprintln(w, "      --temperature <f>     Sampling temperature (0-2)")
	fmt.Fprintln(w, "      --max-tokens <n>      Max tokens per request (100-4096)")
	fmt.Fprintln(w, "      --chunks <n>          Continuation chunks (1-5)")
	printDocumentUsage(w)
	printPageUsage(w)
	printBackendUsage(w)
	printOutputControlUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "API keys are read from GEMINI_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY")
	fmt.Fprintln(w, "and ANTHROPIC_API_KEY, or from a .env file.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start the HTTP API.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renderers (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	printBackendUsage(w)
	printOutputControlUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCGEN_API_KEY            Require this value in the X-API-KEY header")
	fmt.Fprintln(w, "  REDIS_ADDR                Keep jobs in Redis instead of memory")
	fmt.Fprintln(w, "  DOCGEN_S3_BUCKET          Keep PDFs in S3 instead of a directory")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen config [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after merging file, environment and defaults.")
	fmt.Fprintln(w, "Secrets are never printed.")
}

func printDocumentUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Document title")
	fmt.Fprintln(w, "      --author <s>          Document author")
	fmt.Fprintln(w, "      --subject <s>         Document subject")
}

func printPageUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
}

func printBackendUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -b, --backend <s>         PDF backend: native (default), chrome")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file (chrome backend)")
	fmt.Fprintln(w, "      --html                Write the HTML alongside the PDF")
}

func printOutputControlUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "generate":
		printGenerateUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docgen version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docgen help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}
