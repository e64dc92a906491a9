package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/kapu/youtube-data-go/internal/constants"
	"github.com/kapu/youtube-data-go/internal/export"
	"github.com/kapu/youtube-data-go/internal/service/report"
	"github.com/kapu/youtube-data-go/internal/util"
)

func writeJSON(out io.Writer, v any) error {
	return export.WriteJSON(out, v)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func cell(s string, limit int) string {
	return util.TruncateString(util.SingleLine(s), limit)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func renderVideo(out io.Writer, result *report.VideoResult) error {
	v := result.Record
	tw := newTable(out)
	fmt.Fprintf(tw, "Video\t%s\n", v.ID)
	fmt.Fprintf(tw, "Title\t%s\n", cell(v.Title, constants.StringLimits.TableTitle))
	fmt.Fprintf(tw, "Description\t%s\n", cell(v.Description, constants.StringLimits.TableDescription))
	fmt.Fprintf(tw, "Published\t%s\n", date(v.PublishedAt))
	fmt.Fprintf(tw, "Thumbnail\t%s\n", v.ThumbnailURL)
	fmt.Fprintf(tw, "Views\t%d\n", v.Views)
	fmt.Fprintf(tw, "Likes\t%d\n", v.Likes)
	fmt.Fprintf(tw, "Comments\t%d\n", v.Comments)
	fmt.Fprintf(tw, "Engagement\t%s\n", percent(v.Engagement()))
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderFooter(out, result.Cached, result.Exported)
}

func renderPlaylist(out io.Writer, result *report.PlaylistResult) error {
	r := result.Report
	fmt.Fprintf(out, "Playlist %s: %d videos\n\n", r.PlaylistID, r.Totals.Videos)

	tw := newTable(out)
	fmt.Fprintln(tw, "#\tVIDEO\tPUBLISHED\tVIEWS\tLIKES\tCOMMENTS\tTITLE")
	for i, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			i+1, row.ID, date(row.PublishedAt), row.Views, row.Likes, row.Comments,
			cell(row.Title, constants.StringLimits.TableTitle))
	}
	fmt.Fprintf(tw, "\tTOTAL\t\t%d\t%d\t%d\t\n", r.Totals.Views, r.Totals.Likes, r.Totals.Comments)
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderFooter(out, result.Cached, result.Exported)
}

func renderChannel(out io.Writer, result *report.ChannelResult) error {
	r := result.Report
	s := r.Summary

	tw := newTable(out)
	fmt.Fprintf(tw, "Channel\t%s\n", s.ChannelID)
	fmt.Fprintf(tw, "Title\t%s\n", cell(s.Title, constants.StringLimits.TableTitle))
	fmt.Fprintf(tw, "Created\t%s\n", date(s.PublishedAt))
	fmt.Fprintf(tw, "Subscribers\t%d\n", s.SubscriberCount)
	fmt.Fprintf(tw, "Total views\t%d\n", s.TotalViewCount)
	fmt.Fprintf(tw, "Total videos\t%d\n", s.TotalVideoCount)
	if banner := s.GetBannerURL(); banner != "" {
		fmt.Fprintf(tw, "Banner\t%s\n", banner)
	}
	if c := result.Change; c != nil {
		fmt.Fprintf(tw, "Since last run\t%s subscribers (%s), %s views (%s) over %s\n",
			signed(c.SubscriberChange), percent(c.SubscriberPct),
			signed(c.ViewChange), percent(c.ViewPct),
			c.Elapsed.Round(time.Minute))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nUploads (%d):\n", r.Totals.Videos)
	tw = newTable(out)
	fmt.Fprintln(tw, "PUBLISHED\tVIDEO\tVIEWS\tLIKES\tCOMMENTS\tENGAGEMENT\tTITLE")
	for _, v := range r.Videos {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			date(v.PublishedAt), v.ID, v.Views, v.Likes, v.Comments, percent(v.Engagement),
			cell(v.Title, constants.StringLimits.TableTitle))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t%d\t%d\t%s\t\n",
		r.Totals.Views, r.Totals.Likes, r.Totals.Comments, percent(r.Totals.Engagement()))
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderFooter(out, result.Cached, result.Exported)
}

func renderFooter(out io.Writer, cached bool, exported []string) error {
	if cached {
		if _, err := fmt.Fprintln(out, "\n(served from cache, use -refresh to recollect)"); err != nil {
			return err
		}
	}
	if len(exported) > 0 {
		fmt.Fprintln(out, "\nExported:")
		for _, loc := range exported {
			if _, err := fmt.Fprintf(out, "  %s\n", loc); err != nil {
				return err
			}
		}
	}
	return nil
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func signed(v int64) string {
	if v > 0 {
		return "+" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
