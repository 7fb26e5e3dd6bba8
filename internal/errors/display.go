package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// DisplayError formats and displays an error with enhanced formatting
func DisplayError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError writes err to w using the same layout as DisplayError
func FprintError(w io.Writer, err error) {
	applyColorPreference()

	de, ok := As(err)
	if !ok {
		fmt.Fprintf(w, "%s\n", color.RedString("Error: %v", err))
		return
	}

	colorFunc := getErrorStyle(de.Type)

	if de.Type == ErrorTypeAuthentication {
		fmt.Fprintf(w, "\n%s\n", colorFunc(de.Message))
		fmt.Fprintf(w, "   %s %s\n\n", color.MagentaString("Help:"), color.HiWhiteString(de.Help))
		return
	}

	fmt.Fprintf(w, "\n%s\n", colorFunc(de.Message))

	if de.Cause != "" {
		fmt.Fprintf(w, "   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(de.Cause))
	}

	if de.StatusCode > 0 {
		fmt.Fprintf(w, "   %s %s\n", color.CyanString("Status:"), color.HiBlackString("%d", de.StatusCode))
	}

	if len(de.Solutions) > 0 {
		fmt.Fprintf(w, "\n   %s\n", color.GreenString("Solutions:"))
		for i, solution := range de.Solutions {
			fmt.Fprintf(w, "   %s %s\n", color.HiBlackString(fmt.Sprintf("%d.", i+1)), solution)
		}
	}

	if de.Help != "" {
		fmt.Fprintf(w, "   %s %s\n", color.MagentaString("Help:"), color.HiWhiteString(de.Help))
	}

	fmt.Fprintln(w)
}

// getErrorStyle returns the appropriate color function for an error type
func getErrorStyle(errType ErrorType) func(format string, a ...interface{}) string {
	switch errType {
	case ErrorTypeAuthentication:
		return color.YellowString
	case ErrorTypeConfiguration, ErrorTypeValidation:
		return color.YellowString
	case ErrorTypeRateLimit:
		return color.CyanString
	case ErrorTypeFileSystem:
		return color.MagentaString
	default:
		return color.RedString
	}
}

// FormatErrorWithContext formats an error without color, for logs and CI
func FormatErrorWithContext(err error, context map[string]string) string {
	var sb strings.Builder

	de, ok := As(err)
	if !ok {
		sb.WriteString(fmt.Sprintf("Error: %v\n", err))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Error: %s\n", de.Message))
	sb.WriteString(fmt.Sprintf("Type: %s\n", de.Type))

	if de.StatusCode > 0 {
		sb.WriteString(fmt.Sprintf("Status: %d\n", de.StatusCode))
	}

	if de.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", de.Cause))
	}

	if len(context) > 0 {
		sb.WriteString("\nContext:\n")
		for k, v := range context {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	if len(de.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for i, solution := range de.Solutions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, solution))
		}
	}

	if de.Help != "" {
		sb.WriteString(fmt.Sprintf("Help: %s\n", de.Help))
	}

	return sb.String()
}

// DisplayWarning shows a warning message with appropriate formatting
func DisplayWarning(message string) {
	applyColorPreference()
	fmt.Fprintf(os.Stderr, "Warning: %s\n", color.YellowString(message))
}

// DisplaySuccess shows a success message with appropriate formatting
func DisplaySuccess(message string) {
	applyColorPreference()
	fmt.Fprintf(os.Stderr, "Success: %s\n", color.GreenString(message))
}

// DisplayInfo shows an info message with appropriate formatting
func DisplayInfo(message string) {
	applyColorPreference()
	fmt.Fprintf(os.Stderr, "Info: %s\n", color.BlueString(message))
}

func applyColorPreference() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("APIDRIFT_NO_COLOR") != "" || getViperBool("output.no_color") {
		color.NoColor = true
	}
}

// getViperBool safely gets a boolean value from viper
func getViperBool(key string) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return false
}
