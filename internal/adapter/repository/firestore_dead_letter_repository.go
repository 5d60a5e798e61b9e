package repository

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
)

type firestoreDeadLetterRepository struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreDeadLetterRepository(client *firestore.Client, collection string) repository.DeadLetterRepository {
	return &firestoreDeadLetterRepository{
		client:     client,
		collection: collection,
	}
}

func (r *firestoreDeadLetterRepository) Record(ctx context.Context, letter *entity.DeadLetter) error {
	_, err := r.client.Collection(r.collection).Doc(letter.ID).Set(ctx, letter)
	if err != nil {
		return errors.Internal("Failed to record dead letter", err)
	}
	return nil
}

func (r *firestoreDeadLetterRepository) GetByID(ctx context.Context, id string) (*entity.DeadLetter, error) {
	doc, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Dead letter", err)
		}
		return nil, errors.Internal("Failed to get dead letter", err)
	}

	var letter entity.DeadLetter
	if err := doc.DataTo(&letter); err != nil {
		return nil, errors.Internal("Failed to parse dead letter data", err)
	}
	return &letter, nil
}

func (r *firestoreDeadLetterRepository) List(ctx context.Context, limit, offset int) ([]*entity.DeadLetter, int64, error) {
	query := r.client.Collection(r.collection).OrderBy("failedAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting dead letters: %v", err)
		return nil, 0, errors.Internal("Failed to count dead letters", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var letters []*entity.DeadLetter
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating dead letters: %v", err)
			return nil, 0, errors.Internal("Failed to iterate dead letters", err)
		}

		var letter entity.DeadLetter
		if err := doc.DataTo(&letter); err != nil {
			log.Printf("Error parsing dead letter %s: %v", doc.Ref.ID, err)
			return nil, 0, errors.Internal("Failed to parse dead letter data", err)
		}
		letters = append(letters, &letter)
	}

	return letters, total, nil
}
