package encoding

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Class is the failure taxonomy that drives retry and alerting decisions.
type Class string

const (
	ClassNone                 Class = ""
	ClassStaleRequest         Class = "stale_request"
	ClassCorruptInput         Class = "corrupt_input"
	ClassTransientEnvironment Class = "transient_environment"
	ClassUnclassifiedFailure  Class = "unclassified_failure"
)

// Alerts reports whether failures of this class page the operator.
func (c Class) Alerts() bool {
	switch c {
	case ClassCorruptInput, ClassTransientEnvironment, ClassUnclassifiedFailure:
		return true
	default:
		return false
	}
}

// Signature names a recognised failure pattern in encoder output.
type Signature string

const (
	SignatureNone          Signature = ""
	SignatureSignal        Signature = "signal"
	SignatureSharedLibrary Signature = "shared_library"
	SignatureInputMissing  Signature = "input_missing"
	SignatureNameTooLong   Signature = "name_too_long"
	SignatureUnknown       Signature = "unknown"
)

var (
	reSignal = regexp.MustCompile(`received signal \d+|Exiting normally, received signal`)

	reSharedLibrary = regexp.MustCompile(
		`error while loading shared libraries|cannot open shared object file|` +
			`Library not loaded|symbol lookup error`)

	// Only counts on a line naming the input; fonts and render nodes report
	// ENOENT too without ending the run.
	reInputMissing = regexp.MustCompile(
		`No such file or directory|Error opening input|Could not open input file`)

	reNameTooLong = regexp.MustCompile(`File name too long`)
)

type matcher struct {
	sig   Signature
	match func(line string) bool
}

func matchers(input string) []matcher {
	return []matcher{
		{SignatureSignal, reSignal.MatchString},
		{SignatureSharedLibrary, reSharedLibrary.MatchString},
		{SignatureInputMissing, func(line string) bool {
			return input != "" && strings.Contains(line, input) && reInputMissing.MatchString(line)
		}},
		{SignatureNameTooLong, reNameTooLong.MatchString},
	}
}

// Classification is the verdict on a finished encoder run.
type Classification struct {
	Signature Signature
	Class     Class
	Retry     bool
	Reason    string
}

// Classify decides how a run ended. Successful runs return SignatureNone.
// input is the source path handed to ffmpeg; a missing-input verdict needs a
// log line that names it. The log is scanned line by line so large logs are
// never held in memory.
func Classify(result RunResult, input string) (Classification, error) {
	if result.Succeeded() {
		return Classification{}, nil
	}

	candidates := matchers(strings.TrimSpace(input))
	found := map[Signature]string{}
	if result.LogPath != "" {
		file, err := os.Open(result.LogPath)
		if err != nil && !os.IsNotExist(err) {
			return Classification{}, fmt.Errorf("open encoder log: %w", err)
		}
		if file != nil {
			defer file.Close()
			scanner := bufio.NewScanner(file)
			scanner.Buffer(make([]byte, 64*1024), maxLineLen)
			for scanner.Scan() {
				line := scanner.Text()
				for _, candidate := range candidates {
					if _, seen := found[candidate.sig]; !seen && candidate.match(line) {
						found[candidate.sig] = line
					}
				}
			}
			if err := scanner.Err(); err != nil {
				return Classification{}, fmt.Errorf("scan encoder log: %w", err)
			}
		}
	}

	switch {
	case result.Signaled:
		return Classification{
			Signature: SignatureSignal,
			Class:     ClassTransientEnvironment,
			Retry:     true,
			Reason:    "encoder terminated by " + result.Signal,
		}, nil
	case found[SignatureSignal] != "":
		return Classification{SignatureSignal, ClassTransientEnvironment, true, found[SignatureSignal]}, nil
	// The loader's message ends in "No such file or directory", so this must
	// be checked before the missing input signature.
	case found[SignatureSharedLibrary] != "":
		return Classification{SignatureSharedLibrary, ClassTransientEnvironment, true, found[SignatureSharedLibrary]}, nil
	case found[SignatureInputMissing] != "":
		return Classification{SignatureInputMissing, ClassStaleRequest, false, found[SignatureInputMissing]}, nil
	case found[SignatureNameTooLong] != "":
		return Classification{SignatureNameTooLong, ClassStaleRequest, false, found[SignatureNameTooLong]}, nil
	default:
		return Classification{
			Signature: SignatureUnknown,
			Class:     ClassUnclassifiedFailure,
			Reason:    fmt.Sprintf("encoder exited with status %d", result.ExitCode),
		}, nil
	}
}
