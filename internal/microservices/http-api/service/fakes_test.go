package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"musichub/internal/microservices/http-api/models"
	"musichub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the database. One mutex plays the
// role of the unique indexes and row locks.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[string]models.User
	artists map[int64]models.Artist
	albums  map[int64]models.Album
	reviews map[int64]models.Review
	likes   map[likeKey]models.Like
}

type likeKey struct {
	userID   string
	reviewID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[string]models.User{},
		artists: map[int64]models.Artist{},
		albums:  map[int64]models.Album{},
		reviews: map[int64]models.Review{},
		likes:   map[likeKey]models.Like{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) seedArtist(name string) models.Artist {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := models.Artist{ID: f.id(), Name: name, Genre: "rock", Bio: name + " bio"}
	f.artists[a.ID] = a
	return a
}

func (f *fakeStore) seedAlbum(artistID int64, title string) models.Album {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := models.Album{ID: f.id(), ArtistID: artistID, Title: title, ReleaseYear: 1999, Genre: "rock"}
	f.albums[a.ID] = a
	return a
}

func (f *fakeStore) reviewCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reviews)
}

func (f *fakeStore) likeCount(reviewID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLikesLocked(reviewID)
}

func (f *fakeStore) countLikesLocked(reviewID int64) int64 {
	var n int64
	for k := range f.likes {
		if k.reviewID == reviewID {
			n++
		}
	}
	return n
}

// --- users ---

type fakeUsers struct{ *fakeStore }

// Upsert keeps a stored username when the incoming one is empty.
func (f fakeUsers) Upsert(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *user
	if existing, ok := f.users[user.ID]; ok && stored.Username == "" {
		stored.Username = existing.Username
	}
	f.users[user.ID] = stored
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

// --- artists ---

type fakeArtists struct{ *fakeStore }

func (f fakeArtists) GetAll(_ context.Context, page, pageSize int) ([]models.Artist, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]models.Artist, 0, len(f.artists))
	for _, a := range f.artists {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, page, pageSize), int64(len(list)), nil
}

func (f fakeArtists) GetByID(_ context.Context, id int64) (*models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, al := range f.albums {
		if al.ArtistID == id {
			a.Albums = append(a.Albums, al)
		}
	}
	sort.Slice(a.Albums, func(i, j int) bool { return a.Albums[i].ID < a.Albums[j].ID })
	return &a, nil
}

func (f fakeArtists) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.artists[id]
	return ok, nil
}

func (f fakeArtists) Create(_ context.Context, a *models.Artist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.id()
	f.artists[a.ID] = *a
	return nil
}

func (f fakeArtists) Update(_ context.Context, id int64, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artists[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["name"]; ok {
		a.Name = v.(string)
	}
	if v, ok := fields["genre"]; ok {
		a.Genre = v.(string)
	}
	if v, ok := fields["bio"]; ok {
		a.Bio = v.(string)
	}
	f.artists[id] = a
	return nil
}

// Delete cascades to albums, reviews and likes.
func (f fakeArtists) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.artists[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.artists, id)
	for aid, al := range f.albums {
		if al.ArtistID == id {
			f.deleteAlbumLocked(aid)
		}
	}
	return nil
}

// --- albums ---

type fakeAlbums struct{ *fakeStore }

func (f fakeAlbums) GetAll(_ context.Context, filter repository.AlbumFilter, page, pageSize int) ([]models.Album, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.Album
	for _, a := range f.albums {
		if filter.ArtistID != nil && a.ArtistID != *filter.ArtistID {
			continue
		}
		if filter.Genre != "" && !strings.Contains(strings.ToLower(a.Genre), strings.ToLower(filter.Genre)) {
			continue
		}
		a.Artist = f.artists[a.ArtistID]
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return paginate(list, page, pageSize), int64(len(list)), nil
}

func (f fakeAlbums) GetByID(_ context.Context, id int64) (*models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.albums[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a.Artist = f.artists[a.ArtistID]
	return &a, nil
}

func (f fakeAlbums) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.albums[id]
	return ok, nil
}

func (f fakeAlbums) Create(_ context.Context, a *models.Album) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.artists[a.ArtistID]; !ok {
		return repository.ErrForeignKey
	}
	a.ID = f.id()
	f.albums[a.ID] = *a
	return nil
}

func (f fakeAlbums) Update(_ context.Context, id int64, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.albums[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["artist_id"]; ok {
		if _, exists := f.artists[v.(int64)]; !exists {
			return repository.ErrForeignKey
		}
		a.ArtistID = v.(int64)
	}
	if v, ok := fields["title"]; ok {
		a.Title = v.(string)
	}
	if v, ok := fields["release_year"]; ok {
		a.ReleaseYear = v.(int)
	}
	if v, ok := fields["genre"]; ok {
		a.Genre = v.(string)
	}
	f.albums[id] = a
	return nil
}

// Delete cascades like the ON DELETE CASCADE foreign keys do.
func (f fakeAlbums) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.albums[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.deleteAlbumLocked(id)
	return nil
}

func (f *fakeStore) deleteAlbumLocked(id int64) {
	delete(f.albums, id)
	for rid, r := range f.reviews {
		if r.AlbumID == id {
			f.deleteReviewLocked(rid)
		}
	}
}

// --- reviews ---

type fakeReviews struct{ *fakeStore }

func (f fakeReviews) Create(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.albums[review.AlbumID]; !ok {
		return repository.ErrForeignKey
	}
	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.AlbumID == review.AlbumID {
			return repository.ErrDuplicate
		}
	}
	review.ID = f.id()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
		review.UpdatedAt = review.CreatedAt
	}
	f.reviews[review.ID] = *review
	return nil
}

func (f fakeReviews) GetByID(_ context.Context, id int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.hydrateLocked(&r)
	return &r, nil
}

func (f fakeReviews) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.reviews[id]
	return ok, nil
}

func (f fakeReviews) UpdateFields(_ context.Context, id int64, userID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["rating"]; ok {
		r.Rating = v.(int)
	}
	if v, ok := fields["review_text"]; ok {
		r.ReviewText = v.(string)
	}
	if v, ok := fields["updated_at"]; ok {
		r.UpdatedAt = v.(time.Time)
	}
	f.reviews[id] = r
	return nil
}

func (f fakeReviews) Delete(_ context.Context, id int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	f.deleteReviewLocked(id)
	return nil
}

func (f fakeReviews) List(_ context.Context, filter repository.ReviewFilter) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.Review
	for _, r := range f.reviews {
		if filter.AlbumID != nil && r.AlbumID != *filter.AlbumID {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		f.hydrateLocked(&r)
		list = append(list, r)
	}

	less := map[string]func(a, b models.Review) bool{
		"created_at":  func(a, b models.Review) bool { return a.CreatedAt.Before(b.CreatedAt) },
		"-created_at": func(a, b models.Review) bool { return a.CreatedAt.After(b.CreatedAt) },
		"rating":      func(a, b models.Review) bool { return a.Rating < b.Rating },
		"-rating":     func(a, b models.Review) bool { return a.Rating > b.Rating },
	}[filter.Ordering]
	sort.Slice(list, func(i, j int) bool {
		if less(list[i], list[j]) {
			return true
		}
		if less(list[j], list[i]) {
			return false
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (f fakeReviews) AlbumAggregates(_ context.Context, albumID int64) (*models.AlbumAggregates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg := f.aggregateLocked(albumID)
	return &agg, nil
}

func (f fakeReviews) AlbumAggregatesBatch(_ context.Context, albumIDs []int64) (map[int64]models.AlbumAggregates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]models.AlbumAggregates{}
	for _, id := range albumIDs {
		if agg := f.aggregateLocked(id); agg.ReviewCount > 0 {
			out[id] = agg
		}
	}
	return out, nil
}

func (f *fakeStore) aggregateLocked(albumID int64) models.AlbumAggregates {
	var sum, n int64
	for _, r := range f.reviews {
		if r.AlbumID == albumID {
			sum += int64(r.Rating)
			n++
		}
	}
	if n == 0 {
		return models.AlbumAggregates{}
	}
	return models.AlbumAggregates{AverageRating: float64(sum) / float64(n), ReviewCount: n}
}

func (f *fakeStore) hydrateLocked(r *models.Review) {
	r.User = f.users[r.UserID]
	r.Album = f.albums[r.AlbumID]
}

func (f *fakeStore) deleteReviewLocked(id int64) {
	for k := range f.likes {
		if k.reviewID == id {
			delete(f.likes, k)
		}
	}
	delete(f.reviews, id)
}

// --- likes ---

type fakeLikes struct{ *fakeStore }

func (f fakeLikes) Toggle(_ context.Context, reviewID int64, userID string) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[reviewID]; !ok {
		return false, 0, gorm.ErrRecordNotFound
	}
	key := likeKey{userID: userID, reviewID: reviewID}
	if _, ok := f.likes[key]; ok {
		delete(f.likes, key)
		return false, f.countLikesLocked(reviewID), nil
	}
	f.likes[key] = models.Like{ID: f.id(), UserID: userID, ReviewID: reviewID, CreatedAt: time.Now()}
	return true, f.countLikesLocked(reviewID), nil
}

func (f fakeLikes) Status(_ context.Context, reviewID int64, userID string) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[reviewID]; !ok {
		return false, 0, gorm.ErrRecordNotFound
	}
	_, liked := f.likes[likeKey{userID: userID, reviewID: reviewID}]
	return liked, f.countLikesLocked(reviewID), nil
}

func (f fakeLikes) CountByReview(_ context.Context, reviewID int64) (int64, error) {
	return f.likeCount(reviewID), nil
}

func (f fakeLikes) CountByReviews(_ context.Context, reviewIDs []int64) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]int64{}
	for _, id := range reviewIDs {
		if n := f.countLikesLocked(id); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (f fakeLikes) LikedReviewIDs(_ context.Context, userID string, reviewIDs []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range reviewIDs {
		if _, ok := f.likes[likeKey{userID: userID, reviewID: id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f fakeLikes) List(_ context.Context, filter repository.LikeFilter) ([]models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.Like
	for _, l := range f.likes {
		if filter.ReviewID != nil && l.ReviewID != *filter.ReviewID {
			continue
		}
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		l.User = f.users[l.UserID]
		list = append(list, l)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func paginate[T any](list []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(list) {
		return []T{}
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// --- wiring ---

type testServices struct {
	store      *fakeStore
	reviews    *reviewService
	likes      LikeService
	aggregates AggregateService
	catalog    CatalogService
	clock      *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestServices() *testServices {
	store := newFakeStore()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	aggregates := NewAggregateService(fakeReviews{store}, fakeLikes{store}, fakeAlbums{store})
	reviews := NewReviewService(fakeReviews{store}, fakeAlbums{store}, fakeUsers{store}, aggregates).(*reviewService)
	reviews.now = clock.Now

	return &testServices{
		store:      store,
		reviews:    reviews,
		likes:      NewLikeService(fakeLikes{store}, fakeUsers{store}),
		aggregates: aggregates,
		catalog:    NewCatalogService(fakeArtists{store}, fakeAlbums{store}, aggregates),
		clock:      clock,
	}
}
