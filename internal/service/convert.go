package service

import (
	"time"

	"github.com/pribylovaa/go-sports-feed/internal/aggregate"
	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// rowReader читает колонки строки и запоминает первую ошибку чтения.
type rowReader struct {
	row storage.Row
	err error
}

func reader(r storage.Row) *rowReader {
	return &rowReader{row: r}
}

func (rr *rowReader) int64(col string) int64 {
	if rr.err != nil {
		return 0
	}
	v, err := aggregate.Int64(rr.row, col)
	rr.err = err
	return v
}

func (rr *rowReader) int32(col string) int32 {
	if rr.err != nil {
		return 0
	}
	v, err := aggregate.Int32(rr.row, col)
	rr.err = err
	return v
}

func (rr *rowReader) optInt32(col string) *int32 {
	if rr.err != nil {
		return nil
	}
	v, err := aggregate.OptInt32(rr.row, col)
	rr.err = err
	return v
}

func (rr *rowReader) str(col string) string {
	if rr.err != nil {
		return ""
	}
	v, err := aggregate.String(rr.row, col)
	rr.err = err
	return v
}

func (rr *rowReader) time(col string) time.Time {
	if rr.err != nil {
		return time.Time{}
	}
	v, err := aggregate.Time(rr.row, col)
	rr.err = err
	return v
}

func (rr *rowReader) id(col string) string {
	if rr.err != nil {
		return ""
	}
	v, err := aggregate.ID(rr.row, col)
	rr.err = err
	return v
}

func toTeam(r storage.Row) (models.Team, error) {
	rr := reader(r)
	t := models.Team{
		ID:        rr.int64("id"),
		Name:      rr.str("name"),
		ShortName: rr.str("short_name"),
		LogoURL:   rr.str("logo_url"),
	}

	return t, rr.err
}

// teamRef разрешает ссылку на команду; неразрешённая или битая ссылка -> nil.
func teamRef(refs aggregate.References, name string, fk any) *models.Team {
	r, ok := refs.Lookup(name, fk)
	if !ok {
		return nil
	}

	t, err := toTeam(r)
	if err != nil {
		return nil
	}

	return &t
}

func toPlayer(r storage.Row) (models.Player, error) {
	rr := reader(r)
	p := models.Player{
		ID:           rr.int64("id"),
		Name:         rr.str("name"),
		Position:     rr.str("position"),
		JerseyNumber: rr.optInt32("jersey_number"),
	}

	return p, rr.err
}

func buildArticle(r storage.Row, refs aggregate.References, tr aggregate.Translations) (models.Article, error) {
	rr := reader(r)
	a := models.Article{
		ID:          rr.int64("id"),
		ImageURL:    rr.str("image_url"),
		PublishedAt: rr.time("published_at"),
		UpdatedAt:   rr.time("updated_at"),
		Team:        teamRef(refs, refTeams, r["team_id"]),
	}
	if rr.err != nil {
		return models.Article{}, rr.err
	}

	b, _ := tr.For(r["id"])
	a.Headline, a.Summary, a.Content = b.Headline, b.Summary, b.Content
	a.Locale, a.Fallback = b.Locale, b.Fallback

	return a, nil
}

func buildCluster(r storage.Row, refs aggregate.References, tr aggregate.Translations) (models.Cluster, error) {
	rr := reader(r)
	c := models.Cluster{
		ID:        rr.id("id"),
		UpdatedAt: rr.time("updated_at"),
		Sources:   []models.SourceArticle{},
	}
	if rr.err != nil {
		return models.Cluster{}, rr.err
	}

	b, _ := tr.For(r["id"])
	c.Headline, c.Summary, c.Content = b.Headline, b.Summary, b.Content
	c.Locale, c.Fallback = b.Locale, b.Fallback

	for _, sr := range refs.LookupAll(refSources, r["source_article_ids"]) {
		rs := reader(sr)
		sa := models.SourceArticle{
			ID:          rs.int64("id"),
			Title:       rs.str("title"),
			URL:         rs.str("url"),
			PublishedAt: rs.time("published_at"),
		}
		if rs.err != nil {
			continue
		}

		if outlet, ok := refs.Lookup(refOutlets, sr["news_source_id"]); ok {
			ro := reader(outlet)
			src := models.NewsSource{ID: ro.int64("id"), Name: ro.str("name"), URL: ro.str("url")}
			if ro.err == nil {
				sa.Source = &src
			}
		}

		c.Sources = append(c.Sources, sa)
	}

	return c, nil
}

func buildPlayer(r storage.Row, refs aggregate.References, _ aggregate.Translations) (models.Player, error) {
	p, err := toPlayer(r)
	if err != nil {
		return models.Player{}, err
	}
	p.Team = teamRef(refs, refTeams, r["team_id"])

	return p, nil
}

func buildGame(r storage.Row, refs aggregate.References, _ aggregate.Translations) (models.Game, error) {
	rr := reader(r)
	g := models.Game{
		ID:        rr.int64("id"),
		Season:    rr.str("season"),
		StartsAt:  rr.time("starts_at"),
		Venue:     rr.str("venue"),
		Status:    rr.str("status"),
		HomeScore: rr.optInt32("home_score"),
		AwayScore: rr.optInt32("away_score"),
		HomeTeam:  teamRef(refs, refTeams, r["home_team_id"]),
		AwayTeam:  teamRef(refs, refTeams, r["away_team_id"]),
	}

	return g, rr.err
}

func buildStanding(r storage.Row, refs aggregate.References, _ aggregate.Translations) (models.Standing, error) {
	rr := reader(r)
	s := models.Standing{
		ID:     rr.int64("id"),
		Season: rr.str("season"),
		Rank:   rr.int32("rank"),
		Played: rr.int32("played"),
		Won:    rr.int32("won"),
		Drawn:  rr.int32("drawn"),
		Lost:   rr.int32("lost"),
		Points: rr.int32("points"),
		Team:   teamRef(refs, refTeams, r["team_id"]),
	}

	return s, rr.err
}

func buildInjury(r storage.Row, refs aggregate.References, _ aggregate.Translations) (models.Injury, error) {
	rr := reader(r)
	in := models.Injury{
		ID:          rr.int64("id"),
		Status:      rr.str("status"),
		Description: rr.str("description"),
		ReportedAt:  rr.time("reported_at"),
		Team:        teamRef(refs, refTeams, r["team_id"]),
	}
	if rr.err != nil {
		return models.Injury{}, rr.err
	}

	if pr, ok := refs.Lookup(refPlayers, r["player_id"]); ok {
		if p, err := toPlayer(pr); err == nil {
			in.Player = &p
		}
	}

	return in, nil
}
