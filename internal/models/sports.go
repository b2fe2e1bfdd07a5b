package models

import "time"

// Team — команда. Используется как вложенная ссылка в большинстве ответов.
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	LogoURL   string `json:"logoUrl"`
}

// NewsSource — издание, из которого пришла исходная статья.
type NewsSource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SourceArticle — исходная статья, входящая в кластер.
// Source == nil, если издание не удалось разрешить.
type SourceArticle struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	PublishedAt time.Time   `json:"publishedAt"`
	Source      *NewsSource `json:"source"`
}

// Article — редакционная статья.
//
// Особенности:
//   - Headline/Summary/Content уже локализованы (см. Bundle);
//   - Team == nil, если ссылка на команду отсутствует или не разрешилась.
type Article struct {
	ID          int64     `json:"id"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl"`
	Locale      string    `json:"locale"`
	Fallback    bool      `json:"fallback"`
	Team        *Team     `json:"team"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cluster — кластер связанных статей (сюжет) с исходными публикациями.
type Cluster struct {
	ID        string          `json:"id"`
	Headline  string          `json:"headline"`
	Summary   string          `json:"summary"`
	Content   string          `json:"content"`
	Locale    string          `json:"locale"`
	Fallback  bool            `json:"fallback"`
	Sources   []SourceArticle `json:"sources"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Player — игрок состава.
type Player struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	JerseyNumber *int32 `json:"jerseyNumber"`
	Team         *Team  `json:"team"`
}

// Game — матч расписания.
type Game struct {
	ID        int64     `json:"id"`
	Season    string    `json:"season"`
	StartsAt  time.Time `json:"startsAt"`
	Venue     string    `json:"venue"`
	Status    string    `json:"status"`
	HomeTeam  *Team     `json:"homeTeam"`
	AwayTeam  *Team     `json:"awayTeam"`
	HomeScore *int32    `json:"homeScore"`
	AwayScore *int32    `json:"awayScore"`
}

// Standing — строка турнирной таблицы.
type Standing struct {
	ID     int64  `json:"id"`
	Season string `json:"season"`
	Rank   int32  `json:"rank"`
	Played int32  `json:"played"`
	Won    int32  `json:"won"`
	Drawn  int32  `json:"drawn"`
	Lost   int32  `json:"lost"`
	Points int32  `json:"points"`
	Team   *Team  `json:"team"`
}

// Injury — запись о травме игрока.
type Injury struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	ReportedAt  time.Time `json:"reportedAt"`
	Player      *Player   `json:"player"`
	Team        *Team     `json:"team"`
}
