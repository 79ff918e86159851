package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fabfab/study-agent/models"
)

const (
	documentsCollection = "documents"
	chatsCollection     = "chats"
	quizzesCollection   = "quizzes"
	attemptsCollection  = "quizattempts"
	sentinelsCollection = "sentinels"
)

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo returns a store over database name. Indexes are created up front.
func NewMongo(ctx context.Context, client *mongo.Client, name string) (*Mongo, error) {
	if client == nil {
		return nil, fmt.Errorf("mongo client is nil")
	}
	s := &Mongo{client: client, db: client.Database(name)}

	indexes := map[string]mongo.IndexModel{
		chatsCollection:    {Keys: bson.D{{Key: "userId", Value: 1}, {Key: "lastUpdated", Value: -1}}},
		attemptsCollection: {Keys: bson.D{{Key: "userId", Value: 1}, {Key: "attemptedAt", Value: -1}}},
	}
	for coll, model := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return nil, fmt.Errorf("create %s index: %w", coll, err)
		}
	}
	return s, nil
}

func (s *Mongo) CreateDocument(ctx context.Context, doc *models.Document) error {
	if _, err := s.db.Collection(documentsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Mongo) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := findOne(ctx, s.db.Collection(documentsCollection), id, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Mongo) GetDocuments(ctx context.Context, ids []string) ([]models.Document, error) {
	if len(ids) == 0 {
		return []models.Document{}, nil
	}
	cur, err := s.db.Collection(documentsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	var docs []models.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	found := make(map[string]models.Document, len(docs))
	for _, doc := range docs {
		found[doc.ID] = doc
	}
	return orderByIDs(found, ids), nil
}

func (s *Mongo) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetProjection(bson.M{"content": 0})
	cur, err := s.db.Collection(documentsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var docs []models.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	out := make([]models.DocumentSummary, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].Summary())
	}
	return out, nil
}

func (s *Mongo) CreateChat(ctx context.Context, chat *models.Chat) error {
	cp := *chat
	if cp.Messages == nil {
		cp.Messages = []models.Message{}
	}
	cp.DocumentIDs = nonNilStrings(cp.DocumentIDs)
	if _, err := s.db.Collection(chatsCollection).InsertOne(ctx, cp); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (s *Mongo) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := findOne(ctx, s.db.Collection(chatsCollection), id, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Mongo) ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "lastUpdated", Value: -1}}).
		SetProjection(bson.M{"title": 1, "createdAt": 1, "lastUpdated": 1})
	cur, err := s.db.Collection(chatsCollection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	out := make([]models.ChatSummary, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return out, nil
}

func (s *Mongo) AppendMessages(ctx context.Context, chatID string, messages []models.Message, updatedAt time.Time) error {
	res, err := s.db.Collection(chatsCollection).UpdateByID(ctx, chatID, bson.M{
		"$push": bson.M{"messages": bson.M{"$each": messages}},
		"$set":  bson.M{"lastUpdated": updatedAt},
	})
	if err != nil {
		return fmt.Errorf("append messages: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if _, err := s.db.Collection(quizzesCollection).InsertOne(ctx, quiz); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Mongo) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := findOne(ctx, s.db.Collection(quizzesCollection), id, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *Mongo) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if _, err := s.db.Collection(attemptsCollection).InsertOne(ctx, attempt); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Mongo) ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "attemptedAt", Value: -1}})
	cur, err := s.db.Collection(attemptsCollection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]models.QuizAttempt, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	return out, nil
}

func (s *Mongo) ClaimSentinel(ctx context.Context, name string) (bool, error) {
	_, err := s.db.Collection(sentinelsCollection).InsertOne(ctx, bson.M{
		"_id":       name,
		"createdAt": time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim sentinel %s: %w", name, err)
	}
	return true, nil
}

func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func findOne(ctx context.Context, coll *mongo.Collection, id string, out any) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s %s: %w", coll.Name(), id, err)
	}
	return nil
}

var _ Store = (*Mongo)(nil)
