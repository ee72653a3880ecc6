// Package notify implements the notification policy table and message
// templates from the original implementation's Messages class, and a
// pluggable sink registry resolved once at config load.
package notify

import (
	"fmt"

	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/runner"
)

// Notifier is a capability: given a resolved title and body, deliver
// them somewhere. A notifier set is plug-in; the core holds a list of
// such capabilities with no global state.
type Notifier interface {
	Notify(title, body string) error
}

// Message is the resolved (title, body) pair produced for a result that
// the notify policy decided to deliver.
type Message struct {
	Title string
	Body  string
}

// ShouldDeliver applies the per-job notify policy table: Locked and
// Skipped outcomes are never delivered; never suppresses everything;
// on-error delivers Completed{exit≠0} and Error; always delivers every
// Completed and Error outcome.
func ShouldDeliver(policy job.Notify, res runner.Result) bool {
	switch res.Kind {
	case runner.Locked, runner.Skipped:
		return false
	case runner.Error:
		return policy != job.NotifyNever
	case runner.Completed:
		if policy == job.NotifyNever {
			return false
		}
		if policy == job.NotifyAlways {
			return true
		}
		// on-error
		return res.ExitStatus != 0
	default:
		return false
	}
}

// Resolve builds the (title, body) message for a result, following the
// original implementation's exact title templates.
func Resolve(res runner.Result) Message {
	switch res.Kind {
	case runner.Completed:
		if res.ExitStatus == 0 {
			return Message{
				Title: fmt.Sprintf("Job '%s' succeeded", res.Name),
				Body:  composeBody(res.Stdout, res.Stderr),
			}
		}
		return Message{
			Title: fmt.Sprintf("Job '%s' failed with code %d", res.Name, res.ExitStatus),
			Body:  composeBody(res.Stdout, res.Stderr),
		}
	case runner.Error:
		return Message{
			Title: fmt.Sprintf("Job '%s' did not run because of an error", res.Name),
			Body:  fmt.Sprintf("Error message:\n%s\n\nLog:\n%s", res.Message, res.Log),
		}
	default:
		return Message{Title: fmt.Sprintf("Job '%s'", res.Name)}
	}
}

func composeBody(stdout, stderr string) string {
	body := "stdout:\n" + stdout
	if stderr != "" {
		body += "\nstderr:\n" + stderr
	}
	return body
}

// Dispatch resolves and delivers res to every sink in sinks if the
// policy says it should be delivered.
func Dispatch(policy job.Notify, res runner.Result, sinks []Notifier) error {
	if !ShouldDeliver(policy, res) {
		return nil
	}
	msg := Resolve(res)
	var firstErr error
	for _, sink := range sinks {
		if err := sink.Notify(msg.Title, msg.Body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
