package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

var (
	cmdEnroll = &cobra.Command{
		Use:   "enroll [id]",
		Short: "Enroll a finger, into a new template unless id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnroll,
	}
	cmdIdentify = &cobra.Command{
		Use:   "identify [id|all]",
		Short: "Identify a finger against the stored templates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIdentify,
	}
	cmdList = &cobra.Command{
		Use:   "list",
		Short: "List stored template ids",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmdDelete = &cobra.Command{
		Use:   "delete <id|all>",
		Short: "Delete one or every stored template",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
)

var identifyTag uint16

func init() {
	rootCmd.AddCommand(cmdEnroll, cmdIdentify, cmdList, cmdDelete)
	cmdIdentify.Flags().Uint16Var(&identifyTag, "tag", 0, "Tag echoed back in the result")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	id := protocol.GenerateNewID()
	if len(args) == 1 {
		var err error
		if id, err = parseID(args[0]); err != nil {
			return err
		}
	}

	// enrollment waits on the user, so it is bounded by interrupt only
	return withSessionTimeout(cmd, 0, func(ctx context.Context, s *session) error {
		if err := s.sensor.RequestEnroll(id); err != nil {
			return err
		}
		fmt.Println("place finger on the sensor")

		ev, err := s.await(ctx, func(ev sensor.Event) bool {
			if ev.Kind != sensor.KindEnroll {
				return false
			}
			r := ev.Enroll
			fmt.Printf("%s, %d samples remaining\n", sensor.EnrollFeedbackString(r.Feedback), r.SamplesRemaining)
			return r.Feedback == protocol.EnrollFeedbackDone || r.SamplesRemaining == 0
		}, func(ev sensor.Event) {
			if ev.Kind == sensor.KindFingerChange && !ev.Flag {
				fmt.Println("lift and place again")
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				s.sensor.RequestAbort()
			}
			return err
		}
		fmt.Printf("enrolled template %d\n", ev.Enroll.ID)
		return nil
	})
}

func runIdentify(cmd *cobra.Command, args []string) error {
	id := protocol.AllIDs()
	if len(args) == 1 {
		var err error
		if id, err = parseID(args[0]); err != nil {
			return err
		}
	}

	return withSessionTimeout(cmd, 0, func(ctx context.Context, s *session) error {
		if err := s.sensor.RequestIdentify(id, identifyTag); err != nil {
			return err
		}
		fmt.Println("place finger on the sensor")

		ev, err := s.await(ctx, kindIs(sensor.KindIdentify), nil)
		if err != nil {
			if ctx.Err() != nil {
				s.sensor.RequestAbort()
			}
			return err
		}
		if !ev.Identify.Match() {
			fmt.Println("no match")
			return nil
		}
		fmt.Printf("match: template %d (tag %d)\n", ev.Identify.Template.ID, ev.Identify.Tag)
		return nil
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, s.sensor.RequestListTemplates, sensor.KindListTemplates)
		if err != nil {
			return err
		}
		if len(ev.Templates) == 0 {
			fmt.Println("no templates")
			return nil
		}
		for _, id := range ev.Templates {
			fmt.Println(id)
		}
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		_, err := s.request(ctx, func() error {
			return s.sensor.RequestDeleteTemplate(id)
		}, sensor.KindStatus)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", id)
		return nil
	})
}
