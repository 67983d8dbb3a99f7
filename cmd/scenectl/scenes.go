package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerrad567/broadcast-scenes/internal/history"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "Inspect and edit OBS scenes",
	}
	cmd.AddCommand(
		newScenesListCommand(ctx),
		newScenesShowCommand(ctx),
		newScenesCreateCommand(ctx),
		newScenesDuplicateCommand(ctx),
		newScenesRenameCommand(ctx),
		newScenesDeleteCommand(ctx),
	)
	return cmd
}

func newScenesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenes in stack order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			listing, err := s.manager().GetScenes()
			if err != nil {
				return err
			}
			return ctx.emit(cmd, listing, sceneListTable(listing, s.cache.State().CurrentProgramScene))
		},
	}
}

func newScenesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show the items of a scene, top of the stack first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			scene, err := s.manager().GetScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return ctx.emit(cmd, scene, sceneItemsTable(scene))
		},
	}
}

func newScenesCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			scene, err := s.manager().CreateScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.recorder.RecordAction(cmd.Context(), history.ActionCreate, scene.Name, sourceCLI, nil)
			return ctx.emit(cmd, scene, messageTable("Created", scene.Name))
		},
	}
}

func newScenesDuplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate SOURCE DEST",
		Short: "Copy a scene and its items under a new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.manager().DuplicateScene(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			s.recorder.RecordAction(cmd.Context(), history.ActionDuplicate, res.CopiedFrom, sourceCLI, map[string]any{
				"new_name": res.Name,
				"items":    res.ItemCount,
			})
			return ctx.emit(cmd, res, messageTable("Duplicated",
				fmt.Sprintf("%s -> %s (%d items)", res.CopiedFrom, res.Name, res.ItemCount)))
		},
	}
}

func newScenesRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.manager().RenameScene(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			s.recorder.RecordAction(cmd.Context(), history.ActionRename, res.OldName, sourceCLI, map[string]any{
				"new_name": res.NewName,
			})
			return ctx.emit(cmd, res, messageTable("Renamed", res.OldName+" -> "+res.NewName))
		},
	}
}

func newScenesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.manager().DeleteScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s.recorder.RecordAction(cmd.Context(), history.ActionDelete, res.Deleted, sourceCLI, nil)
			return ctx.emit(cmd, res, messageTable("Deleted", res.Deleted))
		},
	}
}

func sceneListTable(listing []scenes.SceneInfo, program string) tableData {
	tbl := tableData{
		headers: []string{"#", "Scene", ""},
		aligns:  []alignment{alignRight},
		footer:  []string{"", fmt.Sprintf("%d scenes", len(listing))},
	}
	for _, info := range listing {
		marker := ""
		if info.Name == program {
			marker = "program"
		}
		tbl.rows = append(tbl.rows, []string{strconv.Itoa(info.Index), info.Name, marker})
	}
	return tbl
}

func sceneItemsTable(scene *scenes.Scene) tableData {
	title := scene.Name
	if scene.Type != "" {
		title += " (" + string(scene.Type) + ")"
	}
	tbl := tableData{
		headers: []string{"#", "Source", "ID", "Enabled"},
		aligns:  []alignment{alignRight, alignLeft, alignRight, alignLeft},
		footer:  []string{"", title},
	}
	for _, item := range scene.Items {
		tbl.rows = append(tbl.rows, []string{
			strconv.Itoa(item.StackIndex),
			item.SourceName,
			strconv.Itoa(item.SceneItemID),
			strconv.FormatBool(item.Enabled),
		})
	}
	return tbl
}

func messageTable(action, detail string) tableData {
	return tableData{
		headers: []string{"Action", "Scene"},
		rows:    [][]string{{action, detail}},
	}
}
