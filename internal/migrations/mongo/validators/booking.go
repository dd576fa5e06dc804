package validators

import "go.mongodb.org/mongo-driver/bson"

// date_end > date_start is enforced by the store before insert; $jsonSchema
// cannot compare two fields.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"room_id",
			"date_start",
			"date_end",
			"created_at",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"room_id": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"date_start": bson.M{
				"bsonType": "date",
			},

			"date_end": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
