package service

import (
	"github.com/pribylovaa/go-sports-feed/internal/aggregate"
	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Имена таблиц соответствий в aggregate.References.
const (
	refTeams   = "teams"
	refPlayers = "players"
	refSources = "source_articles"
	refOutlets = "news_sources"
)

// Ключи сортировки эндпоинтов. Второе поле (id) разрывает равенства первого.
var (
	articleKey = pagination.Desc(
		pagination.Field{Name: "published_at", Kind: pagination.KindTime},
		pagination.Field{Name: "id", Kind: pagination.KindInt},
	)
	clusterKey = pagination.Desc(
		pagination.Field{Name: "updated_at", Kind: pagination.KindTime},
		pagination.Field{Name: "id", Kind: pagination.KindUUID},
	)
	rosterKey   = pagination.Asc(pagination.Field{Name: "id", Kind: pagination.KindInt})
	scheduleKey = pagination.Asc(
		pagination.Field{Name: "starts_at", Kind: pagination.KindTime},
		pagination.Field{Name: "id", Kind: pagination.KindInt},
	)
	injuryKey = pagination.Desc(
		pagination.Field{Name: "reported_at", Kind: pagination.KindTime},
		pagination.Field{Name: "id", Kind: pagination.KindInt},
	)

	standingsOrder = []storage.Order{{Field: "rank"}, {Field: "id"}}
)

var teamColumns = []string{"id", "name", "short_name", "logo_url"}

// teamsBy — ссылка на команды по одной или нескольким колонкам; все колонки дают одну выборку.
func teamsBy(fields ...string) aggregate.RefSpec {
	return aggregate.RefSpec{
		Name:       refTeams,
		Fields:     fields,
		Collection: "teams",
		Columns:    teamColumns,
	}
}

// clusterSources — цепочка story_clusters.source_article_ids -> source_articles -> news_sources.
var clusterSources = aggregate.RefSpec{
	Name:       refSources,
	Fields:     []string{"source_article_ids"},
	Collection: "source_articles",
	Columns:    []string{"id", "news_source_id", "title", "url", "published_at"},
	Nested: []aggregate.RefSpec{{
		Name:       refOutlets,
		Fields:     []string{"news_source_id"},
		Collection: "news_sources",
		Columns:    []string{"id", "name", "url"},
	}},
}

var (
	articleTranslations = &aggregate.TranslationSpec{Collection: "article_translations", ForeignKey: "article_id"}
	clusterTranslations = &aggregate.TranslationSpec{Collection: "cluster_translations", ForeignKey: "cluster_id"}
)
