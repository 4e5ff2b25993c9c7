package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `tb topic [<topic>...]

  Shows the documentation of the topics, the list of topics without argument.
  '*' shows every topic.
`
}

func (*topicCmd) SetFlags(f *flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
