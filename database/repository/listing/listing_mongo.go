package listingRepo

import (
	"errors"
	"fmt"
	"time"

	"ndako/database"
	"ndako/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no listing matches the given id.
var ErrNotFound = errors.New("listing not found")

// MongoListingRepo implements ListingRepository using MongoDB.
type MongoListingRepo struct {
	coll *mongo.Collection
}

// NewMongoListingRepo creates a new instance of ListingRepository using MongoDB.
func NewMongoListingRepo() ListingRepository {
	return &MongoListingRepo{coll: database.Collection("listings")}
}

func (r *MongoListingRepo) GetByID(id string) (*models.Listing, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var listing models.Listing
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&listing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing with id %s: %w", id, err)
	}
	return &listing, nil
}

// GetPublished returns every publicly visible listing.
func (r *MongoListingRepo) GetPublished() ([]models.Listing, error) {
	return r.find(bson.M{"isPublished": true}, 10*time.Second)
}

// GetByOwner returns all listings created by the given user, published or not.
func (r *MongoListingRepo) GetByOwner(ownerID string) ([]models.Listing, error) {
	return r.find(bson.M{"createdBy": ownerID}, 5*time.Second)
}

// GetWithoutCoordinates returns listings whose coordinates are absent or
// approximate, oldest first, for the geocode backfill worker.
func (r *MongoListingRepo) GetWithoutCoordinates(limit int) ([]models.Listing, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"coordinates": bson.M{"$exists": false}},
		{"geoApprox": true},
	}}
	opts := findOptions(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings without coordinates: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

func (r *MongoListingRepo) find(filter bson.M, timeout time.Duration) ([]models.Listing, error) {
	ctx, cancel := newContext(timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	for cursor.Next(ctx) {
		var l models.Listing
		if err := cursor.Decode(&l); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (r *MongoListingRepo) Create(listing *models.Listing) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *MongoListingRepo) Update(listing *models.Listing) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": listing.ID}
	update := bson.M{"$set": listing}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update listing with id %s: %w", listing.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished toggles public visibility without touching the rest of the document.
func (r *MongoListingRepo) SetPublished(id string, published bool) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"isPublished": published, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set published=%v on listing %s: %w", published, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCoordinates stores a (re)geocoded position for the listing.
func (r *MongoListingRepo) SetCoordinates(id string, coords models.Coordinates, approx bool) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"coordinates": coords,
		"geoApprox":   approx,
		"updatedAt":   time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set coordinates on listing %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoListingRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete listing with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
