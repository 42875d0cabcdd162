package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/student-registry/registry-api/internal/core/domain"
)

type StudentRepository struct {
	col *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{col: db.Collection(collectionStudents)}
}

type mongoStudent struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	RegistrationNumber string             `bson:"registration_number"`
	FirstName          string             `bson:"firstname"`
	MiddleName         string             `bson:"middlename"`
	LastName           string             `bson:"lastname"`
	DateOfBirth        string             `bson:"date_of_birth"`
	Gender             string             `bson:"gender"`
	Nationality        string             `bson:"nationality"`
	PreviousSchool     string             `bson:"previous_school"`
	AdmissionNumber    string             `bson:"admission_number"`
	PhotoURL           string             `bson:"photo_url"`
	CreatedAt          int64              `bson:"created_at"`
}

func (ms *mongoStudent) toDomain() *domain.Student {
	return &domain.Student{
		ID:                 ms.ID.Hex(),
		RegistrationNumber: ms.RegistrationNumber,
		FirstName:          ms.FirstName,
		MiddleName:         ms.MiddleName,
		LastName:           ms.LastName,
		DateOfBirth:        ms.DateOfBirth,
		Gender:             ms.Gender,
		Nationality:        ms.Nationality,
		PreviousSchool:     ms.PreviousSchool,
		AdmissionNumber:    ms.AdmissionNumber,
		PhotoURL:           ms.PhotoURL,
		CreatedAt:          unixToTime(ms.CreatedAt),
	}
}

// Create inserts a new student document.
func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoStudent{
		ID:                 primitive.NewObjectID(),
		RegistrationNumber: s.RegistrationNumber,
		FirstName:          s.FirstName,
		MiddleName:         s.MiddleName,
		LastName:           s.LastName,
		DateOfBirth:        s.DateOfBirth,
		Gender:             s.Gender,
		Nationality:        s.Nationality,
		PreviousSchool:     s.PreviousSchool,
		AdmissionNumber:    s.AdmissionNumber,
		PhotoURL:           s.PhotoURL,
		CreatedAt:          s.CreatedAt.Unix(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrStudentExists
		}
		return nil, fmt.Errorf("insert student: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns every student in _id order, which follows insertion time.
func (r *StudentRepository) List(ctx context.Context) ([]*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoStudent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}

	out := make([]*domain.Student, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}
