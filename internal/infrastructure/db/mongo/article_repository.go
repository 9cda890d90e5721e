package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillpress/blog-system/internal/core/domain"
)

const collectionArticles = "articles"

// ArticleRepository implements ports.ArticleRepository using MongoDB.
// Authors are resolved from the users collection with a single $in query.
type ArticleRepository struct {
	col   *mongo.Collection
	users *UserRepository
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{
		col:   db.Collection(collectionArticles),
		users: NewUserRepository(db),
	}
}

type mongoArticle struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Image     string             `bson:"image,omitempty"`
	AuthorID  string             `bson:"author_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (ma *mongoArticle) toDomain() *domain.Article {
	return &domain.Article{
		ID:        ma.ID.Hex(),
		Title:     ma.Title,
		Content:   ma.Content,
		Image:     ma.Image,
		AuthorID:  ma.AuthorID,
		CreatedAt: ma.CreatedAt.UTC(),
		UpdatedAt: ma.UpdatedAt.UTC(),
	}
}

func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoArticle{
		ID:        primitive.NewObjectID(),
		Title:     a.Title,
		Content:   a.Content,
		Image:     a.Image,
		AuthorID:  a.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return r.withAuthor(ctx, doc.toDomain())
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrArticleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoArticle
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return r.withAuthor(ctx, doc.toDomain())
}

func (r *ArticleRepository) List(ctx context.Context) ([]*domain.Article, error) {
	return r.find(ctx, bson.M{})
}

func (r *ArticleRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Article, error) {
	return r.find(ctx, bson.M{"author_id": authorID})
}

func (r *ArticleRepository) find(ctx context.Context, filter bson.M) ([]*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	var docs []mongoArticle
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	articles := make([]*domain.Article, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for i := range docs {
		articles = append(articles, docs[i].toDomain())
		ids = append(ids, docs[i].AuthorID)
	}

	authors, err := r.users.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		a.Author = authors[a.AuthorID]
	}
	return articles, nil
}

// Update applies the non-nil fields of patch and returns the updated article.
func (r *ArticleRepository) Update(ctx context.Context, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrArticleNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoArticle
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return r.withAuthor(ctx, doc.toDomain())
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrArticleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, fmt.Errorf("delete articles by author: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ArticleRepository) withAuthor(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	authors, err := r.users.summaries(ctx, []string{a.AuthorID})
	if err != nil {
		return nil, err
	}
	a.Author = authors[a.AuthorID]
	return a, nil
}

// EnsureIndexes creates the author and recency indexes on the articles collection.
func (r *ArticleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
