package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/lynnxiaofeng/parkyoga/internal/adapters/render/screen"
	"github.com/lynnxiaofeng/parkyoga/internal/application"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/spf13/cobra"
)

func newCourseCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "course",
		Aliases: []string{"courses"},
		Short:   "Browse, share, book and manage courses",
	}

	cmd.AddCommand(
		newCourseListCmd(app),
		newCourseOpenCmd(app),
		newCourseShareCmd(app),
		newCourseBookCmd(app),
		newCourseCreateCmd(app),
		newCourseUpdateCmd(app),
		newCourseDeleteCmd(app),
	)

	return cmd
}

func newCourseListCmd(app *app) *cobra.Command {
	var suburb string
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses, optionally in one suburb",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.session.IsAuthenticated() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Log in to see courses.")
			}

			defer app.courses.Unmount()
			err := withSpinner(cmd, format, "Fetching courses...", func(ctx context.Context) error {
				if suburb != "" {
					return app.courses.Search(ctx, suburb)
				}
				return app.courses.Mount(ctx)
			})
			if err != nil {
				return settle(fmt.Errorf("list courses: %w", err))
			}

			courses := app.courses.Items()
			return writeScreen(cmd, format, toCourseViews(courses), func() (string, error) {
				return screen.Courses(courses, screen.CourseOptions{Suburb: app.courses.Filter().Suburb})
			})
		},
	}

	cmd.Flags().StringVar(&suburb, "suburb", "", "Only show courses in this suburb")
	format.bind(cmd)

	return cmd
}

func newCourseOpenCmd(app *app) *cobra.Command {
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "open <link>",
		Short: "Open a shared course link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var course domain.Course
			err := withSpinner(cmd, format, "Opening course...", func(ctx context.Context) error {
				opened, _, err := app.courses.Open(ctx, args[0])
				course = opened
				return err
			})
			if err != nil {
				return settle(fmt.Errorf("open course link: %w", err))
			}

			if format.machine() {
				return format.write(cmd.OutOrStdout(), toCourseView(course))
			}

			highlighted, _ := app.courses.Highlighted()
			rendered, err := screen.Courses(app.courses.Items(), screen.CourseOptions{Highlighted: highlighted})
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	format.bind(cmd)

	return cmd
}

func newCourseShareCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "share <course-id>",
		Short: "Print an invitation with a link to the course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.courses.Refresh(cmd.Context()); err != nil {
				return settle(fmt.Errorf("list courses: %w", err))
			}

			message, err := app.courses.Share(domain.CourseID(args[0]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
			return err
		},
	}
}

func newCourseBookCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "book <course-id>",
		Short: "Book a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := domain.Course{ID: domain.CourseID(args[0])}
			if app.session.IsAuthenticated() {
				if err := app.courses.Refresh(cmd.Context()); err != nil {
					return settle(fmt.Errorf("list courses: %w", err))
				}
				if index, ok := domain.FindCourse(app.courses.Items(), target.ID); ok {
					target = app.courses.Items()[index]
				}
			}

			booking, err := app.bookings.Book(cmd.Context(), target)
			switch {
			case err == nil:
			case application.IsRateLimited(err):
				return nil
			case errors.Is(err, domain.ErrNotAuthenticated):
				return fmt.Errorf("authentication required: %w", err)
			default:
				return fmt.Errorf("book course: %s", domain.UserMessage(err, "Could not create booking"))
			}

			name := booking.Course.Name
			if name == "" {
				name = string(booking.Course.ID)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Booked %q (booking %s, %s)\n", name, booking.ID, booking.Status)
			return err
		},
	}
}

type courseFlags struct {
	course domain.Course
}

func (f *courseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.course.Name, "name", "", "Course name")
	cmd.Flags().StringVar(&f.course.Description, "description", "", "Course description")
	cmd.Flags().StringVar(&f.course.Time, "time", "", "When the course runs")
	cmd.Flags().StringVar(&f.course.Location.Suburb, "suburb", "", "Suburb")
	cmd.Flags().StringVar(&f.course.Location.Park, "park", "", "Park")
	cmd.Flags().StringVar(&f.course.Location.Link, "link", "", "Map link")
}

// applyTo copies only the flags the user set onto course.
func (f *courseFlags) applyTo(cmd *cobra.Command, course domain.Course) domain.Course {
	changed := cmd.Flags().Changed
	if changed("name") {
		course.Name = f.course.Name
	}
	if changed("description") {
		course.Description = f.course.Description
	}
	if changed("time") {
		course.Time = f.course.Time
	}
	if changed("suburb") {
		course.Location.Suburb = f.course.Location.Suburb
	}
	if changed("park") {
		course.Location.Park = f.course.Location.Park
	}
	if changed("link") {
		course.Location.Link = f.course.Location.Link
	}
	return course
}

func newCourseCreateCmd(app *app) *cobra.Command {
	var flags courseFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course (administrators only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.courses.Create(cmd.Context(), flags.course); err != nil {
				return settle(serverError(err, "Failed to save course"))
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Course %q created\n", flags.course.Name)
			return err
		},
	}

	flags.bind(cmd)

	return cmd
}

func newCourseUpdateCmd(app *app) *cobra.Command {
	var flags courseFlags

	cmd := &cobra.Command{
		Use:   "update <course-id>",
		Short: "Update a course (administrators only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.courses.Refresh(cmd.Context()); err != nil {
				return settle(fmt.Errorf("list courses: %w", err))
			}

			id := domain.CourseID(args[0])
			items := app.courses.Items()
			index, ok := domain.FindCourse(items, id)
			if !ok {
				return fmt.Errorf("update %q: %w", id, domain.ErrCourseNotFound)
			}

			updated := flags.applyTo(cmd, items[index])
			if err := app.courses.Update(cmd.Context(), updated); err != nil {
				return settle(serverError(err, "Failed to save course"))
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Course %q updated\n", updated.Name)
			return err
		},
	}

	flags.bind(cmd)

	return cmd
}

func newCourseDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <course-id>",
		Short: "Delete a course (administrators only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.courses.Delete(cmd.Context(), domain.CourseID(args[0])); err != nil {
				return settle(serverError(err, "Failed to delete course"))
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Course %s deleted\n", args[0])
			return err
		},
	}
}

// serverError keeps local refusals as they are and turns server answers
// into the message shown to the user.
func serverError(err error, fallback string) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && !application.IsRateLimited(err) {
		return errors.New(domain.UserMessage(err, fallback))
	}
	return err
}

// settle swallows rate-limit errors: the alerter has already shown the
// backend's notice and the lists were left untouched.
func settle(err error) error {
	if application.IsRateLimited(err) {
		return nil
	}
	return err
}
